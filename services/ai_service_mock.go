package services

import (
	"context"
	"sync"
)

// MockAIService is a mock implementation of AIService for testing
type MockAIService struct {
	DiagnoseFunc func(ctx context.Context, req DiagnosisRequest) (*DiagnosisResponse, error)
	AnalyzeFunc  func(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysisResponse, error)

	mu               sync.Mutex
	diagnoseRequests []DiagnosisRequest
	analyzeRequests  []ImageAnalysisRequest
}

// NewMockAIService creates a mock that answers every request with reply
func NewMockAIService(reply string) *MockAIService {
	return &MockAIService{
		DiagnoseFunc: func(ctx context.Context, req DiagnosisRequest) (*DiagnosisResponse, error) {
			return &DiagnosisResponse{Diagnosis: reply, Solution: reply, ConversationResponse: reply}, nil
		},
		AnalyzeFunc: func(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysisResponse, error) {
			return &ImageAnalysisResponse{Analysis: reply, IdentifiedIssues: IdentifyIssues(reply), Recommendations: reply}, nil
		},
	}
}

// DiagnoseIssue records the request and delegates to DiagnoseFunc
func (m *MockAIService) DiagnoseIssue(ctx context.Context, req DiagnosisRequest) (*DiagnosisResponse, error) {
	m.mu.Lock()
	m.diagnoseRequests = append(m.diagnoseRequests, req)
	m.mu.Unlock()
	return m.DiagnoseFunc(ctx, req)
}

// AnalyzeApplianceImage records the request and delegates to AnalyzeFunc
func (m *MockAIService) AnalyzeApplianceImage(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysisResponse, error) {
	m.mu.Lock()
	m.analyzeRequests = append(m.analyzeRequests, req)
	m.mu.Unlock()
	return m.AnalyzeFunc(ctx, req)
}

// DiagnoseCalls returns the diagnosis requests seen so far
func (m *MockAIService) DiagnoseCalls() []DiagnosisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DiagnosisRequest(nil), m.diagnoseRequests...)
}

// AnalyzeCalls returns the image analysis requests seen so far
func (m *MockAIService) AnalyzeCalls() []ImageAnalysisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageAnalysisRequest(nil), m.analyzeRequests...)
}
