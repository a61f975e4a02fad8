package payrexx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// EncodeForm renders the canonical form-url-encoded body of a request:
// the object's fields in declaration order, then any additional fields
// in the order supplied, keyed fields[name] (or fields[name][value]
// when a value is present). Spaces render as %20, never +. The result
// is computed once and reused both for signing and for the transmitted
// payload; the two must be byte-identical.
func EncodeForm(req Request) string {
	var sb strings.Builder
	for _, f := range req.Fields() {
		writePair(&sb, f.Name, f.Value)
	}
	if af, ok := req.(additionalFielder); ok {
		for _, f := range af.additionalFields() {
			if f.Value != nil {
				writePair(&sb, "fields["+f.Name+"][value]", *f.Value)
			} else {
				writePair(&sb, "fields["+f.Name+"]", "")
			}
		}
	}
	return sb.String()
}

func writePair(sb *strings.Builder, name, value string) {
	if sb.Len() > 0 {
		sb.WriteByte('&')
	}
	sb.WriteString(escape(name))
	sb.WriteByte('=')
	sb.WriteString(escape(value))
}

func escape(s string) string {
	// url.QueryEscape encodes a space as +, the API wants %20
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Sign computes Base64(HMAC-SHA256(secretKey, message)). The signature
// is appended to the parameter set under SignatureParam afterward, so
// it signs the body without itself included.
func Sign(secretKey, message string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// bodyBytes converts the signed form string into the transmitted
// payload. The API expects an ISO-8859-1 body; the percent-encoded
// form is plain ASCII so this is a charset declaration more than a
// transformation, but any stray non-ASCII byte is normalized here.
func bodyBytes(signedForm string) []byte {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(signedForm))
	if err != nil {
		return []byte(signedForm)
	}
	return out
}
