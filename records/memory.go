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

package records

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/FAIR-Data-Austria/invenio-madmp/auth"
)

// A MemoryService is an in-process record store. It backs the test suites
// and standalone deployments that don't have a real record store wired up.
type MemoryService struct {
	mutex     sync.RWMutex
	records   map[uuid.UUID]*Record
	byPid     map[string]uuid.UUID
	nextRecid int
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		records: make(map[uuid.UUID]*Record),
		byPid:   make(map[string]uuid.UUID),
	}
}

func (s *MemoryService) Get(id uuid.UUID) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.records[id], nil
}

func (s *MemoryService) ResolvePid(pidValue string) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	id, found := s.byPid[pidValue]
	if !found {
		return nil, nil
	}
	return s.records[id], nil
}

func (s *MemoryService) CreateDraft(data map[string]any, identity auth.Identity) (*Record, error) {
	if identity == "" {
		return nil, &PermissionError{Operation: "create"}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextRecid++
	record := &Record{
		Id:    uuid.New(),
		Draft: true,
		Pids: []Pid{
			{Value: fmt.Sprintf("recid-%d", s.nextRecid), Type: "recid"},
		},
		Data: copyData(data),
	}
	s.records[record.Id] = record
	s.byPid[record.Pids[0].Value] = record.Id
	return record, nil
}

func (s *MemoryService) Update(record *Record, data map[string]any, identity auth.Identity) (*Record, error) {
	if identity == "" {
		return nil, &PermissionError{Operation: "update"}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, found := s.records[record.Id]
	if !found {
		return nil, &RecordNotFoundError{Id: record.Id}
	}
	stored.Data = copyData(data)
	return stored, nil
}

// Attaches an additional persistent identifier to the given record. This is
// how externally-minted identifiers (e.g. DOIs) become known to the service.
func (s *MemoryService) AddPid(record *Record, pid Pid) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, found := s.records[record.Id]
	if !found {
		return &RecordNotFoundError{Id: record.Id}
	}
	stored.Pids = append(stored.Pids, pid)
	s.byPid[pid.Value] = stored.Id
	if stored != record {
		record.Pids = stored.Pids
	}
	return nil
}

// shallow copy is not enough: converters reuse their sub-maps between calls
func copyData(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		if nested, isMap := value.(map[string]any); isMap {
			copied[key] = copyData(nested)
		} else {
			copied[key] = value
		}
	}
	return copied
}
