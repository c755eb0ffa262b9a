package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIBackend asks a vision chat model to play the classifier.
type OpenAIBackend struct {
	client openai.Client
	model  openai.ChatModel
	labels []string
	topK   int
}

type openAIGuesses struct {
	Guesses []Prediction `json:"guesses" jsonschema_description:"Ranked guesses, most likely first"`
}

const openAISystemPrompt = "You classify quick pencil doodles drawn on a white 280x280 canvas. " +
	"Answer only with category names in lowercase, using underscores instead of spaces. " +
	"Confidence values must sum to at most 1."

func NewOpenAIBackend(apiKey, model, baseURL string, labels []string, topK int) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithMaxRetries(2),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if topK <= 0 {
		topK = 5
	}
	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
		labels: labels,
		topK:   topK,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Load(ctx context.Context) error {
	if b.model == "" {
		return errors.New("OpenAI model is not configured")
	}
	if _, err := b.client.Models.Get(ctx, string(b.model)); err != nil {
		return fmt.Errorf("OpenAI model lookup failed: %w", err)
	}
	return nil
}

func (b *OpenAIBackend) Classify(ctx context.Context, in Input) (Reply, error) {
	if in.Image == nil {
		return Reply{}, errors.New("classifier input has no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, in.Image); err != nil {
		return Reply{}, fmt.Errorf("failed to encode doodle: %w", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(b.userPrompt()),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "doodle_guesses",
					Description: openai.String("Ranked doodle category guesses"),
					Schema:      generateSchema[openAIGuesses](),
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("OpenAI classify request failed: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return Reply{}, errors.New("empty response from OpenAI")
	}
	return guessesToReply(completion.Choices[0].Message.Content, b.topK)
}

func (b *OpenAIBackend) userPrompt() string {
	prompt := fmt.Sprintf("Return your %d best guesses for this doodle.", b.topK)
	if len(b.labels) > 0 {
		prompt += " Known categories include: " + strings.Join(b.labels, ", ") + "."
	}
	return prompt
}

func guessesToReply(content string, topK int) (Reply, error) {
	var parsed openAIGuesses
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Reply{}, fmt.Errorf("failed to parse OpenAI guesses: %w", err)
	}
	guesses := parsed.Guesses
	for i := range guesses {
		guesses[i].Label = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(guesses[i].Label)), " ", "_")
	}
	sort.SliceStable(guesses, func(i, j int) bool {
		return guesses[i].Confidence > guesses[j].Confidence
	})
	if topK > 0 && len(guesses) > topK {
		guesses = guesses[:topK]
	}
	results, err := json.Marshal(guesses)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Results: results}, nil
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
