// Package runtime holds the small support surface generated client code
// links against: query encoding, header value conversion, request
// validation, and the optional-value wrapper.
package runtime

import (
	"encoding/base64"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/gorilla/schema"
)

var queryEncoder = newQueryEncoder()

func newQueryEncoder() *schema.Encoder {
	enc := schema.NewEncoder()
	enc.SetAliasTag("schema")
	enc.RegisterEncoder(time.Time{}, func(v reflect.Value) string {
		return v.Interface().(time.Time).Format(time.RFC3339)
	})
	enc.RegisterEncoder([]byte(nil), func(v reflect.Value) string {
		return base64.StdEncoding.EncodeToString(v.Bytes())
	})
	// Matches FormatValue so query, path, and header renderings of the
	// same value agree on the wire.
	enc.RegisterEncoder(float64(0), func(v reflect.Value) string {
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	})
	return enc
}

// EncodeQuery URL-encodes a generated Query structure. Pointer fields are
// flattened by the encoder; callers drop unset optionals afterwards.
func EncodeQuery(v any) (url.Values, error) {
	vals := url.Values{}
	if err := queryEncoder.Encode(v, vals); err != nil {
		return nil, err
	}
	return vals, nil
}
