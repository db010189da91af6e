package assess

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/labelwise/labelwise/internal/prompts"
	"github.com/labelwise/labelwise/internal/types"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

var userPromptHash = prompts.HashText(userPromptTmpl)

// UserPromptHash returns the content hash of the embedded user prompt
// template. It matches the hash the resolver registers, so call records
// can reference the exact prompt version.
func UserPromptHash() string {
	return userPromptHash
}

// SystemPrompt returns the system prompt for safety assessment.
func SystemPrompt() string {
	return systemPrompt
}

// UserPromptData is the flattened template input for the user prompt.
// Numeric fields are pre-formatted strings so rendering is byte-stable.
type UserPromptData struct {
	Conditions         []string
	DetailedConditions string
	WeightGoal         string
	Gender             string
	WeightKg           string

	ProductName  string
	Ingredients  string
	RawText      string
	ServingSizeG string
	Calories     string
	FatG         string
	SugarG       string
	SodiumMg     string
}

// UserPrompt renders the user prompt for a validated assessment
// request. Rendering is deterministic: the same request always yields
// byte-identical text. Callers must validate the request first; an
// unvalidated request must never reach this function.
func UserPrompt(req types.AssessmentRequest) (string, error) {
	data := UserPromptData{
		DetailedConditions: req.Profile.DetailedConditions,
		WeightGoal:         string(req.Profile.WeightGoal),
		Gender:             req.Profile.Gender,
		WeightKg:           formatOptional(req.Profile.WeightKg),
		ProductName:        req.Label.ProductName,
		Ingredients:        req.Label.Ingredients,
		RawText:            req.Label.RawText,
		ServingSizeG:       formatOptional(req.Label.ServingSizeG),
		Calories:           formatOptional(req.Label.Calories),
		FatG:               formatOptional(req.Label.FatG),
		SugarG:             formatOptional(req.Label.SugarG),
		SodiumMg:           formatOptional(req.Label.SodiumMg),
	}
	// Conditions render in canonical declaration order regardless of
	// how the caller ordered them.
	for _, c := range types.KnownConditions {
		if req.Profile.HasCondition(c) {
			data.Conditions = append(data.Conditions, string(c))
		}
	}

	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render assessment prompt: %w", err)
	}
	return buf.String(), nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Prompt keys
const (
	SystemPromptKey = "stages.assess.system"
	UserPromptKey   = "stages.assess.user"
)

// RegisterPrompts registers the assessment prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Safety assessment system prompt - three-part response with verdict rules and few-shot examples",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Safety assessment user prompt template",
	})
}
