package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/models"
)

// fakeOpenAI serves /v1/chat/completions with a fixed reply and records request bodies
func fakeOpenAI(t *testing.T, status int, reply string) (*httptest.Server, *[]map[string]interface{}) {
	t.Helper()
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		resp := map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-5",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]interface{}{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func newTestAIService(srv *httptest.Server) *OpenAIService {
	return NewOpenAIService(&config.Config{
		OpenAIAPIKey:    "test-key",
		OpenAIModel:     "gpt-5",
		OpenAIBaseURL:   srv.URL + "/v1",
		OpenAIMaxTokens: 2048,
	})
}

func TestDiagnoseIssue(t *testing.T) {
	srv, bodies := fakeOpenAI(t, http.StatusOK, "1. Check the door seal.")
	service := newTestAIService(srv)

	resp, err := service.DiagnoseIssue(context.Background(), DiagnosisRequest{
		Issue:         "Fridge is not cooling",
		ApplianceType: "Refrigerator",
		Brand:         "LG",
		ConversationHistory: []models.ChatMessage{
			{Role: models.RoleUser, Content: "Hi"},
			{Role: models.RoleAssistant, Content: "Hello, what is wrong?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Check the door seal.", resp.Diagnosis)
	assert.Equal(t, resp.Diagnosis, resp.Solution)
	assert.Equal(t, resp.Diagnosis, resp.ConversationResponse)

	require.Len(t, *bodies, 1)
	body := (*bodies)[0]
	assert.Equal(t, "gpt-5", body["model"])
	assert.EqualValues(t, 2048, body["max_completion_tokens"])

	messages := body["messages"].([]interface{})
	require.Len(t, messages, 4)
	roles := make([]string, 0, len(messages))
	for _, m := range messages {
		roles = append(roles, m.(map[string]interface{})["role"].(string))
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)

	last := messages[3].(map[string]interface{})["content"].(string)
	assert.Contains(t, last, "Appliance: Refrigerator")
	assert.Contains(t, last, "Brand: LG")
	assert.Contains(t, last, "Model: Unknown")
	assert.Contains(t, last, "Issue: Fridge is not cooling")
}

func TestDiagnoseIssue_UpstreamError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusInternalServerError, "")
	service := newTestAIService(srv)

	_, err := service.DiagnoseIssue(context.Background(), DiagnosisRequest{Issue: "noise"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to get AI diagnosis: "), err.Error())
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAnalyzeApplianceImage(t *testing.T) {
	srv, bodies := fakeOpenAI(t, http.StatusOK, "I see ERROR CODE E4 and a small leak under the door.")
	service := newTestAIService(srv)

	resp, err := service.AnalyzeApplianceImage(context.Background(), ImageAnalysisRequest{
		Base64Image: "aGVsbG8=",
		MimeType:    "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Error code detected", "Potential leak"}, resp.IdentifiedIssues)
	assert.Equal(t, resp.Analysis, resp.Recommendations)

	require.Len(t, *bodies, 1)
	messages := (*bodies)[0]["messages"].([]interface{})
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, parts, 2)

	text := parts[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "analyzing an image of a home appliance")
	assert.Contains(t, text, "User's description: No description provided")

	imageURL := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})["url"].(string)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", imageURL)
}

func TestAnalyzeApplianceImage_UpstreamError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusInternalServerError, "")
	service := newTestAIService(srv)

	_, err := service.AnalyzeApplianceImage(context.Background(), ImageAnalysisRequest{Base64Image: "aGVsbG8="})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to analyze image: "), err.Error())
}

func TestIdentifyIssues(t *testing.T) {
	tests := []struct {
		name     string
		analysis string
		expected []string
	}{
		{name: "none", analysis: "Everything looks fine.", expected: []string{}},
		{name: "all three in fixed order", analysis: "A leak, some DAMAGE and an Error Code.", expected: []string{"Error code detected", "Visible damage", "Potential leak"}},
		{name: "substring match", analysis: "The hose is leaking.", expected: []string{"Potential leak"}},
		{name: "damaged", analysis: "The panel is damaged.", expected: []string{"Visible damage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IdentifyIssues(tt.analysis))
		})
	}
}

func TestBuildDiagnosisPrompt_AllUnknown(t *testing.T) {
	prompt := BuildDiagnosisPrompt(DiagnosisRequest{Issue: "Washer won't spin"})
	assert.Contains(t, prompt, "Appliance: Unknown\nBrand: Unknown\nModel: Unknown")
	assert.Contains(t, prompt, "Issue: Washer won't spin")
}

func TestBuildImageAnalysisPrompt(t *testing.T) {
	prompt := BuildImageAnalysisPrompt(ImageAnalysisRequest{ApplianceType: "dishwasher", UserDescription: "blinking light"})
	assert.Contains(t, prompt, "an image of a dishwasher.")
	assert.Contains(t, prompt, "User's description: blinking light")
}

func TestMockAIService(t *testing.T) {
	mock := NewMockAIService("visible damage")
	resp, err := mock.AnalyzeApplianceImage(context.Background(), ImageAnalysisRequest{Base64Image: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Visible damage"}, resp.IdentifiedIssues)
	assert.Len(t, mock.AnalyzeCalls(), 1)
	assert.Empty(t, mock.DiagnoseCalls())
}
