package internal

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// UniqueLookup reports whether a conflicting row already holds the candidate
// value within the given scope, excluding one row id during updates. Injected
// so the same validator logic runs against a live store or an in-memory
// snapshot.
type UniqueLookup func(ctx context.Context, entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (bool, error)

// auditFields are injected by the engine and never validated as user input.
var auditFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
}

// fieldCheck is one step of a composite validator. Order is significant: the
// first failing check supplies the surfaced message.
type fieldCheck struct {
	passes  func(value any) bool
	message string
}

// FieldValidator is the composed validator for a single field. Immutable
// after construction; safe for concurrent use.
type FieldValidator struct {
	Field           string
	Kind            adminkit.ValidationKind
	Required        bool
	Unique          bool
	requiredMessage string
	uniqueMessage   string
	checks          []fieldCheck
	ui              map[string]any
}

// UI returns the UI hints attached to the field's validation metadata, if any.
func (v *FieldValidator) UI() map[string]any { return v.ui }

// Validate runs the composite check over one value. The returned message is
// empty when the value passes; err reports a uniqueness-lookup failure, which
// is a store problem, not a validation verdict.
func (v *FieldValidator) Validate(ctx context.Context, entity *adminkit.EntitySchema, value any, scope any, excludeID any, lookup UniqueLookup) (string, error) {
	if isEmptyValue(value) {
		if v.Required {
			return v.requiredMessage, nil
		}
		// Optional fields with empty values always pass without
		// evaluating further checks.
		return "", nil
	}

	for _, check := range v.checks {
		if !check.passes(value) {
			return check.message, nil
		}
	}

	if v.Unique && lookup != nil {
		conflict, err := lookup(ctx, entity, v.Field, value, scope, excludeID)
		if err != nil {
			return "", fmt.Errorf("uniqueness lookup for '%s': %w", v.Field, err)
		}
		if conflict {
			return v.uniqueMessage, nil
		}
	}

	return "", nil
}

func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ValidatorBuilder synthesizes composite field validators from entity
// metadata. Validators are built eagerly per entity at construction and
// shared read-only across callers.
type ValidatorBuilder struct {
	registry   adminkit.SchemaRegistry
	resolver   *Resolver
	validators map[string]map[string]*FieldValidator
}

// NewValidatorBuilder pre-builds validators for every registered entity.
func NewValidatorBuilder(registry adminkit.SchemaRegistry, resolver *Resolver) *ValidatorBuilder {
	b := &ValidatorBuilder{
		registry:   registry,
		resolver:   resolver,
		validators: make(map[string]map[string]*FieldValidator),
	}
	for _, key := range registry.ListEntities() {
		schema, err := registry.EntityMetadata(key)
		if err != nil {
			continue
		}
		fields := make(map[string]*FieldValidator, len(schema.Fields))
		for i := range schema.Fields {
			field := &schema.Fields[i]
			if field.Name == schema.IDField || auditFields[field.Name] {
				continue
			}
			fields[field.Name] = b.buildFieldValidator(field)
		}
		b.validators[key] = fields
	}
	zap.S().Debugw("field validators built", "entities", len(b.validators))
	return b
}

// FieldValidator returns the prebuilt validator for a field, or nil for
// identity/audit fields and unknown names.
func (b *ValidatorBuilder) FieldValidator(entity, field string) *FieldValidator {
	return b.validators[entity][field]
}

// EntityValidators returns all prebuilt validators for an entity.
func (b *ValidatorBuilder) EntityValidators(entity string) map[string]*FieldValidator {
	return b.validators[entity]
}

// buildFieldValidator assembles the composite check for one field. Two
// strategies: metadata-driven when the field carries ValidationMetadata
// (rich messages, declared constraints), structural fallback otherwise
// (derived from the declared type and options alone).
func (b *ValidatorBuilder) buildFieldValidator(field *adminkit.FieldDef) *FieldValidator {
	kind := inferValidationKind(field)
	meta := field.Options.Validation

	v := &FieldValidator{
		Field:           field.Name,
		Kind:            kind,
		Required:        field.Options.Required,
		Unique:          field.Options.Unique,
		requiredMessage: "is required",
		uniqueMessage:   "must be unique",
	}

	message := func(key, fallback string) string {
		if meta != nil && meta.Messages[key] != "" {
			return meta.Messages[key]
		}
		return fallback
	}
	v.requiredMessage = message("required", v.requiredMessage)
	v.uniqueMessage = message("unique", v.uniqueMessage)
	if meta != nil {
		v.ui = meta.UI
	}

	// Check order is fixed: the first failure supplies the message.
	// required is handled by Validate itself; then lengths, pattern,
	// structural, comparison constraints.
	if meta != nil {
		cons := meta.Constraints
		if cons.MinLength != nil {
			minLen := *cons.MinLength
			v.checks = append(v.checks, fieldCheck{
				passes: func(value any) bool {
					s, err := cast.ToStringE(value)
					return err == nil && len([]rune(s)) >= minLen
				},
				message: message("min-length", fmt.Sprintf("must be at least %d characters", minLen)),
			})
		}
		if cons.MaxLength != nil {
			maxLen := *cons.MaxLength
			v.checks = append(v.checks, fieldCheck{
				passes: func(value any) bool {
					s, err := cast.ToStringE(value)
					return err == nil && len([]rune(s)) <= maxLen
				},
				message: message("max-length", fmt.Sprintf("must be at most %d characters", maxLen)),
			})
		}
		if cons.Pattern != "" {
			if re, err := regexp.Compile(cons.Pattern); err == nil {
				v.checks = append(v.checks, fieldCheck{
					passes: func(value any) bool {
						s, castErr := cast.ToStringE(value)
						return castErr == nil && re.MatchString(s)
					},
					message: message("pattern", "has an invalid format"),
				})
			} else {
				zap.S().Warnw("invalid validation pattern, skipping",
					"field", field.Name, "pattern", cons.Pattern, "error", err)
			}
		}
		if cons.MinValue != nil {
			minVal := *cons.MinValue
			v.checks = append(v.checks, fieldCheck{
				passes: func(value any) bool {
					n, err := cast.ToFloat64E(value)
					return err == nil && n >= minVal
				},
				message: message("min-value", fmt.Sprintf("must be at least %v", minVal)),
			})
		}
		if cons.MaxValue != nil {
			maxVal := *cons.MaxValue
			v.checks = append(v.checks, fieldCheck{
				passes: func(value any) bool {
					n, err := cast.ToFloat64E(value)
					return err == nil && n <= maxVal
				},
				message: message("max-value", fmt.Sprintf("must be at most %v", maxVal)),
			})
		}
		if len(cons.Values) > 0 {
			set := make(map[string]bool, len(cons.Values))
			for _, val := range cons.Values {
				set[val] = true
			}
			v.checks = append(v.checks, fieldCheck{
				passes: func(value any) bool {
					s, err := cast.ToStringE(value)
					return err == nil && set[s]
				},
				message: message("invalid", "is not an allowed value"),
			})
		}
	}

	// Kind-specific format check, then the declared type's structural check.
	if kindCheck, kindMessage := kindFormatCheck(kind); kindCheck != nil {
		v.checks = append(v.checks, fieldCheck{
			passes:  kindCheck,
			message: message("invalid", kindMessage),
		})
	}
	v.checks = append(v.checks, fieldCheck{
		passes:  b.resolver.BaseCheck(field.Type),
		message: message("invalid", structuralMessage(field.Type)),
	})

	for _, constraint := range b.resolver.Constraints(field) {
		c := constraint
		v.checks = append(v.checks, fieldCheck{
			passes:  c.Evaluate,
			message: message("check", c.Describe()),
		})
	}

	return v
}

// inferValidationKind applies the precedence: explicit metadata, then
// name-suffix heuristic, then type-based default, then generic text.
func inferValidationKind(field *adminkit.FieldDef) adminkit.ValidationKind {
	if meta := field.Options.Validation; meta != nil && meta.Kind != "" {
		return meta.Kind
	}

	name := strings.ToLower(field.Name)
	switch {
	case strings.HasSuffix(name, "email"):
		return adminkit.ValidationKindEmail
	case strings.HasSuffix(name, "phone"):
		return adminkit.ValidationKindPhone
	case strings.HasSuffix(name, "url") || strings.HasSuffix(name, "website"):
		return adminkit.ValidationKindURL
	case strings.HasSuffix(name, "password"):
		return adminkit.ValidationKindPassword
	}

	switch field.Type.Kind {
	case adminkit.FieldKindDecimal:
		return adminkit.ValidationKindNumber
	case adminkit.FieldKindInteger:
		return adminkit.ValidationKindInteger
	case adminkit.FieldKindBoolean:
		return adminkit.ValidationKindBoolean
	case adminkit.FieldKindUUID:
		return adminkit.ValidationKindUUID
	case adminkit.FieldKindJSONB:
		return adminkit.ValidationKindJSON
	case adminkit.FieldKindDate, adminkit.FieldKindTimestamp:
		return adminkit.ValidationKindDate
	case adminkit.FieldKindEnum:
		return adminkit.ValidationKindEnum
	default:
		return adminkit.ValidationKindText
	}
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ().-]{6,20}$`)
	urlPattern   = regexp.MustCompile(`^https?://[^\s]+$`)
)

// kindFormatCheck returns the format check a ValidationKind implies beyond
// the declared type, or nil when the structural check already covers it.
func kindFormatCheck(kind adminkit.ValidationKind) (func(any) bool, string) {
	switch kind {
	case adminkit.ValidationKindEmail:
		return func(value any) bool {
			s, err := cast.ToStringE(value)
			return err == nil && emailPattern.MatchString(s)
		}, "must be a valid email address"
	case adminkit.ValidationKindPhone:
		return func(value any) bool {
			s, err := cast.ToStringE(value)
			return err == nil && phonePattern.MatchString(s)
		}, "must be a valid phone number"
	case adminkit.ValidationKindURL:
		return func(value any) bool {
			s, err := cast.ToStringE(value)
			return err == nil && urlPattern.MatchString(s)
		}, "must be a valid URL"
	default:
		return nil, ""
	}
}

func structuralMessage(fieldType adminkit.FieldType) string {
	switch fieldType.Kind {
	case adminkit.FieldKindVarchar:
		return fmt.Sprintf("must be text of at most %d characters", fieldType.Length)
	case adminkit.FieldKindDecimal, adminkit.FieldKindInteger:
		return "must be a number"
	case adminkit.FieldKindBoolean:
		return "must be true or false"
	case adminkit.FieldKindUUID:
		return "must be a valid identifier"
	case adminkit.FieldKindJSONB:
		return "must be valid JSON"
	case adminkit.FieldKindDate, adminkit.FieldKindTimestamp:
		return "must be a valid date"
	case adminkit.FieldKindInet:
		return "must be a valid network address"
	case adminkit.FieldKindEnum:
		return "is not an allowed value"
	case adminkit.FieldKindArray:
		return "must be a list"
	default:
		return "is invalid"
	}
}

// ValidateEntity evaluates field validators over a store-keyed payload and
// collects every error; nothing short-circuits across fields. With
// partial=true only supplied fields are evaluated (update semantics);
// otherwise every declared non-identity field is.
func (b *ValidatorBuilder) ValidateEntity(ctx context.Context, entity *adminkit.EntitySchema, data adminkit.Record, scope any, excludeID any, partial bool, lookup UniqueLookup) (*adminkit.ValidationResult, error) {
	fieldErrors := make(map[string]string)

	for name, validator := range b.validators[entity.Key] {
		value, supplied := data[name]
		if partial && !supplied {
			continue
		}
		msg, err := validator.Validate(ctx, entity, value, scope, excludeID, lookup)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			fieldErrors[name] = msg
		}
	}

	if len(fieldErrors) > 0 {
		return &adminkit.ValidationResult{Valid: false, Errors: fieldErrors}, nil
	}
	return &adminkit.ValidationResult{Valid: true}, nil
}
