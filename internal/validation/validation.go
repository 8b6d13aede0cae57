// Package validation checks concept and mapping drafts before and after they
// are written.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/termvault/termvault/internal/terminology"
)

// Messages for struct tag failures.
const (
	MsgRequired        = "This field is required."
	MsgInvalidMnemonic = "Enter a valid mnemonic. Only letters, digits, '.', '_', '@' and '-' are allowed."
	MsgInvalid         = "Enter a valid value."
)

// MappingLookup answers the uniqueness question for mappings. It is usually
// bound to the transaction the mapping is written in.
type MappingLookup interface {
	DuplicateExists(ctx context.Context, m *terminology.Mapping) (bool, error)
}

type conceptFields struct {
	Mnemonic     string      `json:"mnemonic" validate:"required,namespace"`
	ParentID     int64       `json:"parent" validate:"required"`
	ConceptClass string      `json:"concept_class" validate:"required"`
	Datatype     string      `json:"datatype" validate:"required"`
	Names        []textField `json:"names" validate:"dive"`
	Descriptions []textField `json:"descriptions" validate:"dive"`
}

type textField struct {
	Name   string `json:"name" validate:"required"`
	Locale string `json:"locale" validate:"required"`
}

type mappingFields struct {
	Mnemonic string `json:"mnemonic" validate:"omitempty,namespace"`
	ParentID int64  `json:"parent" validate:"required"`
	MapType  string `json:"map_type" validate:"required"`
}

type sourceFields struct {
	OwnerType     string `json:"owner_type" validate:"required,oneof=orgs users"`
	Owner         string `json:"owner" validate:"required,namespace"`
	Mnemonic      string `json:"mnemonic" validate:"required,namespace"`
	Version       string `json:"version" validate:"required"`
	CanonicalURL  string `json:"canonical_url" validate:"omitempty,url"`
	DefaultLocale string `json:"default_locale" validate:"required"`
}

// Validator runs struct tag rules through go-playground/validator and the
// domain rules that need more than one field.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom namespace rule registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("namespace", validateNamespace)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func validateNamespace(fl validator.FieldLevel) bool {
	return terminology.NamespacePattern.MatchString(fl.Field().String())
}

// ValidateConcept returns the problems found in c, or nil.
func (v *Validator) ValidateConcept(ctx context.Context, c *terminology.Concept) *terminology.ErrorSet {
	errs := terminology.NewErrorSet(terminology.ErrValidation)

	fields := conceptFields{
		Mnemonic:     c.Mnemonic,
		ParentID:     c.ParentID,
		ConceptClass: c.ConceptClass,
		Datatype:     c.Datatype,
		Names:        toTextFields(c.Names),
		Descriptions: toTextFields(c.Descriptions),
	}
	v.collect(errs, fields)

	if len(c.Names) == 0 {
		errs.Add("names", terminology.MsgConceptNameRequired)
	}

	preferred := map[string]int{}
	for _, name := range c.Names {
		if name.LocalePreferred {
			preferred[name.Locale]++
		}
	}
	for _, count := range preferred {
		if count > 1 {
			errs.Add("names", terminology.MsgConceptOnePreferredPerLocale)
			break
		}
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

// ValidateSource returns the problems found in s, or nil.
func (v *Validator) ValidateSource(ctx context.Context, s *terminology.Source) *terminology.ErrorSet {
	errs := terminology.NewErrorSet(terminology.ErrValidation)
	v.collect(errs, sourceFields{
		OwnerType:     s.OwnerType,
		Owner:         s.Owner,
		Mnemonic:      s.Mnemonic,
		Version:       s.Version,
		CanonicalURL:  s.CanonicalURL,
		DefaultLocale: s.DefaultLocale,
	})
	if errs.Empty() {
		return nil
	}
	return errs
}

// ValidateMapping returns the problems found in m, or nil. lookup may be nil
// to skip the uniqueness check.
func (v *Validator) ValidateMapping(ctx context.Context, m *terminology.Mapping, lookup MappingLookup) *terminology.ErrorSet {
	errs := terminology.NewErrorSet(terminology.ErrValidation)

	v.collect(errs, mappingFields{
		Mnemonic: m.Mnemonic,
		ParentID: m.ParentID,
		MapType:  m.MapType,
	})

	if m.From.State() == terminology.Unresolved && m.From.Code == "" {
		errs.Add("from_concept", terminology.MsgMustSpecifyFromConcept)
	}
	if m.To.State() == terminology.Unresolved && (m.To.Code == "" || m.To.SourceURL == "") {
		errs.Add("to_concept", terminology.MsgMustSpecifyToConcept)
	}

	if m.IsFromSameAsTo() {
		errs.Add(terminology.AllFields, terminology.MsgCannotMapConceptToSelf)
	}

	if lookup != nil && m.MapType != "" {
		dup, err := lookup.DuplicateExists(ctx, m)
		if err != nil {
			errs.Add(terminology.AllFields, fmt.Sprintf("failed to check uniqueness: %v", err)).WithCause(err)
		} else if dup {
			errs.Add(terminology.AllFields, terminology.MsgMappingNotUnique)
		}
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

func (v *Validator) collect(errs *terminology.ErrorSet, s any) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(terminology.AllFields, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		errs.Add(fieldKey(fe), message(fe))
	}
}

// fieldKey turns "conceptFields.names[0].locale" into "names".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if idx := strings.IndexAny(ns, ".["); idx >= 0 {
		return ns[:idx]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Namespace() != "" && strings.Contains(fe.Namespace(), "[") {
			return fmt.Sprintf("%s: %s", fe.Field(), MsgRequired)
		}
		return MsgRequired
	case "namespace":
		return MsgInvalidMnemonic
	default:
		return MsgInvalid
	}
}

func toTextFields(texts []terminology.LocalizedText) []textField {
	out := make([]textField, 0, len(texts))
	for _, t := range texts {
		out = append(out, textField{Name: t.Name, Locale: t.Locale})
	}
	return out
}
