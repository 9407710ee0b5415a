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

package rdm

import (
	"strings"
	"sync"
)

// A User is a registered repository user who can own records.
type User struct {
	Id    string
	Email string
}

// A UserDirectory resolves registered users by their e-mail address. Lookups
// for unknown addresses return nil without an error.
type UserDirectory interface {
	UserByEmail(email string) (*User, error)
}

// A MemoryDirectory is an in-process user directory. It backs the test
// suites and standalone deployments that don't have a real user store
// wired up.
type MemoryDirectory struct {
	mutex sync.RWMutex
	users map[string]*User
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]*User)}
}

// AddUser registers a user under their e-mail address.
func (d *MemoryDirectory) AddUser(user User) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.users[strings.ToLower(user.Email)] = &user
}

func (d *MemoryDirectory) UserByEmail(email string) (*User, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.users[strings.ToLower(email)], nil
}
