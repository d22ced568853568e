package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/smartassist/smartassist-api/utils"
)

type memoryObject struct {
	contentType string
	body        []byte
}

// MemoryObjectStore is an in-process ObjectStore for tests and local runs
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryObjectStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{contentType: contentType, body: body}
	return nil
}

// PresignGet fails for unknown keys
func (m *MemoryObjectStore) PresignGet(ctx context.Context, key string) (string, error) {
	if !m.Has(key) {
		return "", fmt.Errorf("object %s not found", key)
	}
	return fmt.Sprintf("https://smartassist-test.s3.amazonaws.com/%s?mock=true", key), nil
}

func (m *MemoryObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryObjectStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// ContentType returns the type recorded by Put, or "" for unknown keys
func (m *MemoryObjectStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}

// Contents returns a copy of every stored body by key
func (m *MemoryObjectStore) Contents() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.objects))
	for key, obj := range m.objects {
		out[key] = obj.body
	}
	return out
}

// MockImageService stores photos in memory under predictable keys
// (diagnoses/mock_<name>). Set UploadErr to simulate a storage outage.
type MockImageService struct {
	*BucketImageService
	Objects   *MemoryObjectStore
	UploadErr error
}

func NewMockImageService() *MockImageService {
	objects := NewMemoryObjectStore()
	images := NewBucketImageService(objects)
	images.keyFor = func(filename string) string {
		return "diagnoses/mock_" + utils.SanitizeFilename(filename)
	}
	return &MockImageService{BucketImageService: images, Objects: objects}
}

func (m *MockImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	return m.BucketImageService.UploadImage(ctx, fileHeader)
}

// Stored returns the uploaded photos by key
func (m *MockImageService) Stored() map[string][]byte {
	return m.Objects.Contents()
}
