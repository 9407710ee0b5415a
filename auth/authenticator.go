// Copyright (c) 2020 FAIR Data Austria and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package auth

import (
	"strings"

	"github.com/fernet/fernet-go"
)

// This type accepts a valid access token in exchange for an identity. Tokens
// are fernet-encrypted identity strings, provisioned out of band and
// verified against the service's configured key(s). It's really a short-term
// solution, but it provides a method for granting sync access without Acts
// of God.
type Authenticator struct {
	keys []*fernet.Key
}

// Creates an authenticator verifying tokens against the given
// whitespace-separated fernet key(s).
func NewAuthenticator(secret string) (*Authenticator, error) {
	keys, err := fernet.DecodeKeys(strings.Fields(secret)...)
	if err != nil {
		return nil, &InvalidKeyError{Message: err.Error()}
	}
	if len(keys) == 0 {
		return nil, &InvalidKeyError{Message: "no keys provided"}
	}
	return &Authenticator{keys: keys}, nil
}

// given an access token, returns the identity it encodes or an error
func (a *Authenticator) IdentityForToken(accessToken string) (Identity, error) {
	// tokens don't expire (ttl 0); they are revoked by rotating the keys
	message := fernet.VerifyAndDecrypt([]byte(accessToken), 0, a.keys)
	if message == nil {
		return "", &InvalidTokenError{}
	}
	identity := strings.TrimSpace(string(message))
	if identity == "" {
		return "", &InvalidTokenError{}
	}
	return Identity(identity), nil
}
