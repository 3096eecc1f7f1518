package intent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
)

// Error codes raised while parsing or executing commands.
const (
	CodeInvalidCommand    = "invalid_command"
	CodeUnsupportedIntent = "unsupported_intent"
	CodeIntentUnavailable = "intent_unavailable"
	CodeIntentClassifier  = "intent_classifier_error"
	CodeValidation        = itinerary.CodeValidation
)

// Kind tags a command variant.
type Kind string

const (
	KindPlan        Kind = "PLAN"
	KindEditDayPace Kind = "EDIT_DAY_PACE"
	KindExplain     Kind = "EXPLAIN"
)

// Command is one of PlanCommand, EditDayPaceCommand or ExplainCommand.
type Command interface {
	Kind() Kind
	// TripRef is the trip the command acts on, empty for PLAN.
	TripRef() string
	isCommand()
}

// PlanCommand starts a new trip.
type PlanCommand struct {
	City      string   `json:"city" validate:"required"`
	Interests []string `json:"interests" validate:"required,min=1,dive,required"`
	Days      int      `json:"days" validate:"min=1"`
	Pace      string   `json:"pace" validate:"oneof=relaxed moderate packed"`
}

// EditDayPaceCommand rebuilds one day at a new pace.
type EditDayPaceCommand struct {
	TripID string `json:"tripId"`
	Day    int    `json:"day" validate:"min=1"`
	Pace   string `json:"pace" validate:"oneof=relaxed moderate packed"`
}

// ExplainCommand asks why the plan, or a POI in it, looks the way it does.
type ExplainCommand struct {
	TripID string `json:"tripId"`
	Target string `json:"target"`
}

func (PlanCommand) Kind() Kind        { return KindPlan }
func (EditDayPaceCommand) Kind() Kind { return KindEditDayPace }
func (ExplainCommand) Kind() Kind     { return KindExplain }

func (PlanCommand) TripRef() string          { return "" }
func (c EditDayPaceCommand) TripRef() string { return c.TripID }
func (c ExplainCommand) TripRef() string     { return c.TripID }

func (PlanCommand) isCommand()        {}
func (EditDayPaceCommand) isCommand() {}
func (ExplainCommand) isCommand()     {}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseCommand decodes a tagged command {"intent": KIND, ...fields} and validates it.
func ParseCommand(raw []byte) (Command, error) {
	var envelope struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.Wrap(CodeInvalidCommand, "command is not valid JSON", err)
	}

	switch Kind(strings.ToUpper(strings.TrimSpace(envelope.Intent))) {
	case KindPlan:
		var cmd PlanCommand
		if err := decodeFields(raw, &cmd); err != nil {
			return nil, err
		}
		cmd.City = strings.TrimSpace(cmd.City)
		cmd.Pace = normalizePace(cmd.Pace)
		for i, interest := range cmd.Interests {
			cmd.Interests[i] = strings.ToLower(strings.TrimSpace(interest))
		}
		return validated(cmd)
	case KindEditDayPace:
		var cmd EditDayPaceCommand
		if err := decodeFields(raw, &cmd); err != nil {
			return nil, err
		}
		cmd.TripID = strings.TrimSpace(cmd.TripID)
		cmd.Pace = normalizePace(cmd.Pace)
		return validated(cmd)
	case KindExplain:
		var cmd ExplainCommand
		if err := decodeFields(raw, &cmd); err != nil {
			return nil, err
		}
		cmd.TripID = strings.TrimSpace(cmd.TripID)
		cmd.Target = strings.TrimSpace(cmd.Target)
		return validated(cmd)
	case "":
		return nil, apperrors.Newf(CodeInvalidCommand, "command intent is missing")
	default:
		return nil, apperrors.Newf(CodeUnsupportedIntent, "unsupported intent %q", envelope.Intent)
	}
}

func decodeFields(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Wrap(CodeInvalidCommand, "command fields are malformed", err)
	}
	return nil
}

func normalizePace(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validated(cmd Command) (Command, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func validateCommand(cmd Command) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(CodeValidation, "command validation failed", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, formatFieldError(fe))
	}
	return apperrors.Newf(CodeValidation, "%s command invalid: %s", cmd.Kind(), strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s (got: %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %q)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s'", field, fe.Tag())
	}
}
