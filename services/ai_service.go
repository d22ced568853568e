package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/metrics"
	"github.com/smartassist/smartassist-api/models"
)

const diagnosisSystemPrompt = `You are an expert appliance repair technician with decades of experience diagnosing and fixing home electronics and appliances.

Your role is to:
1. Ask clarifying questions to understand the exact issue
2. Provide step-by-step troubleshooting instructions
3. Identify likely causes and solutions
4. Recommend when professional help is needed

Be conversational, helpful, and specific. Use simple language that homeowners can understand. When providing steps, number them clearly.`

// DiagnosisRequest is the input to a troubleshooting turn
type DiagnosisRequest struct {
	Issue               string
	ApplianceType       string
	Brand               string
	Model               string
	ConversationHistory []models.ChatMessage
}

// DiagnosisResponse carries the model's reply. All three fields hold the same text.
type DiagnosisResponse struct {
	Diagnosis            string
	Solution             string
	ConversationResponse string
}

// ImageAnalysisRequest is the input to a photo analysis
type ImageAnalysisRequest struct {
	Base64Image     string
	MimeType        string
	ApplianceType   string
	UserDescription string
}

// ImageAnalysisResponse is the model's reading of an appliance photo
type ImageAnalysisResponse struct {
	Analysis         string
	IdentifiedIssues []string
	Recommendations  string
}

// AIService diagnoses appliance problems through a hosted chat-completion model
type AIService interface {
	DiagnoseIssue(ctx context.Context, req DiagnosisRequest) (*DiagnosisResponse, error)
	AnalyzeApplianceImage(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysisResponse, error)
}

// OpenAIService implements AIService with the OpenAI chat completions API
type OpenAIService struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIService creates the AI service from configuration
func NewOpenAIService(cfg *config.Config) *OpenAIService {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIService{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.OpenAIModel,
		maxTokens: cfg.OpenAIMaxTokens,
	}
}

// DiagnoseIssue sends the system prompt, any prior turns and the new issue in one request
func (s *OpenAIService) DiagnoseIssue(ctx context.Context, req DiagnosisRequest) (*DiagnosisResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.ConversationHistory)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: diagnosisSystemPrompt,
	})
	for _, m := range req.ConversationHistory {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: BuildDiagnosisPrompt(req),
	})

	text, err := s.complete(ctx, "diagnose", messages)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI diagnosis: %w", err)
	}

	return &DiagnosisResponse{
		Diagnosis:            text,
		Solution:             text,
		ConversationResponse: text,
	}, nil
}

// AnalyzeApplianceImage sends the photo as a data URL together with the analysis prompt
func (s *OpenAIService) AnalyzeApplianceImage(ctx context.Context, req ImageAnalysisRequest) (*ImageAnalysisResponse, error) {
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: BuildImageAnalysisPrompt(req),
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mimeType, req.Base64Image),
					},
				},
			},
		},
	}

	text, err := s.complete(ctx, "analyze_image", messages)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	return &ImageAnalysisResponse{
		Analysis:         text,
		IdentifiedIssues: IdentifyIssues(text),
		Recommendations:  text,
	}, nil
}

func (s *OpenAIService) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage) (text string, err error) {
	start := time.Now()
	defer func() { metrics.RecordAICall(operation, time.Since(start), err) }()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               s.model,
		Messages:            messages,
		MaxCompletionTokens: s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildDiagnosisPrompt renders the user turn for a diagnosis request
func BuildDiagnosisPrompt(req DiagnosisRequest) string {
	return fmt.Sprintf(`Appliance: %s
Brand: %s
Model: %s

Issue: %s

Please help diagnose this problem and provide troubleshooting guidance.`,
		orDefault(req.ApplianceType, "Unknown"),
		orDefault(req.Brand, "Unknown"),
		orDefault(req.Model, "Unknown"),
		req.Issue,
	)
}

// BuildImageAnalysisPrompt renders the text part of an image analysis request
func BuildImageAnalysisPrompt(req ImageAnalysisRequest) string {
	return fmt.Sprintf(`You are an expert appliance repair technician analyzing an image of a %s.

User's description: %s

Please analyze this image and provide:
1. What you see in the image (error codes, visible damage, parts)
2. Potential issues or problems identified
3. Recommended next steps or solutions

Be specific and actionable. If you see error codes, explain what they mean.`,
		orDefault(req.ApplianceType, "home appliance"),
		orDefault(req.UserDescription, "No description provided"),
	)
}

var issueKeywords = []struct {
	keyword string
	label   string
}{
	{"error code", "Error code detected"},
	{"damage", "Visible damage"},
	{"leak", "Potential leak"},
}

// IdentifyIssues tags an analysis by case-insensitive keyword search
func IdentifyIssues(analysis string) []string {
	lower := strings.ToLower(analysis)
	issues := []string{}
	for _, k := range issueKeywords {
		if strings.Contains(lower, k.keyword) {
			issues = append(issues, k.label)
		}
	}
	return issues
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
