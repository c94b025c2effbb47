package services

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/platefinder/backend/internal/domain/entities"
	apperrors "github.com/platefinder/backend/pkg/errors"
)

// DefaultSupportedLanguages is the set of languages the assistant can narrate
// in. Anything outside it falls back to DefaultLanguage for UI and provider
// traffic while the classified language is kept for downstream narration
// fallbacks.
var DefaultSupportedLanguages = []string{"en", "he", "ru", "ar", "fr", "es"}

const DefaultLanguage = "en"

// LangCtxUpdate carries per-stage changes to the mutable part of a LangCtx.
// The assistant fields exist only so mis-wired stages can be caught: setting
// either to a different value than the one classified at init is a contract
// violation, never a silent overwrite.
type LangCtxUpdate struct {
	AssistantLanguage           *string
	AssistantLanguageConfidence *float64

	UILanguage       *string
	ProviderLanguage *string
	Region           *string
}

type LanguageContextService struct {
	supported map[string]bool
	matcher   language.Matcher
	fallback  string
}

func NewLanguageContextService(supported []string, fallback string) *LanguageContextService {
	if len(supported) == 0 {
		supported = DefaultSupportedLanguages
	}
	if fallback == "" {
		fallback = DefaultLanguage
	}

	set := make(map[string]bool, len(supported))
	tags := make([]language.Tag, 0, len(supported))
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		set[baseCode(tag)] = true
		tags = append(tags, tag)
	}

	return &LanguageContextService{
		supported: set,
		matcher:   language.NewMatcher(tags),
		fallback:  fallback,
	}
}

// InitLangCtx creates the language record at the first classification stage.
// detected is whatever the classifier emitted (BCP 47-ish, e.g. "ru" or
// "he-IL"); it is kept verbatim as the assistant language even when
// unsupported, so a narration stage can explain the fallback.
func (s *LanguageContextService) InitLangCtx(detected string, confidence float64, region string) entities.LangCtx {
	resolved := s.Normalize(detected)
	return entities.LangCtx{
		AssistantLanguage:           detected,
		AssistantLanguageConfidence: confidence,
		UILanguage:                  resolved,
		ProviderLanguage:            resolved,
		Region:                      region,
	}
}

// UpdateLangCtx returns a copy of ctx with the mutable fields from update
// applied. Any attempt to alter an immutable field fails with an invariant
// error and the original ctx is returned unchanged.
func (s *LanguageContextService) UpdateLangCtx(ctx entities.LangCtx, update LangCtxUpdate) (entities.LangCtx, error) {
	if update.AssistantLanguage != nil && *update.AssistantLanguage != ctx.AssistantLanguage {
		return ctx, apperrors.NewInvariantError(fmt.Sprintf(
			"language contract violation: assistant language is %q and cannot become %q",
			ctx.AssistantLanguage, *update.AssistantLanguage))
	}
	if update.AssistantLanguageConfidence != nil && *update.AssistantLanguageConfidence != ctx.AssistantLanguageConfidence {
		return ctx, apperrors.NewInvariantError(fmt.Sprintf(
			"language contract violation: assistant language confidence is %v and cannot become %v",
			ctx.AssistantLanguageConfidence, *update.AssistantLanguageConfidence))
	}

	next := ctx
	if update.UILanguage != nil {
		next.UILanguage = s.Normalize(*update.UILanguage)
	}
	if update.ProviderLanguage != nil {
		next.ProviderLanguage = s.Normalize(*update.ProviderLanguage)
	}
	if update.Region != nil {
		next.Region = *update.Region
	}
	return next, nil
}

// AssertUserFacingLanguage guards message emission: the language a message is
// declared in must be exactly the classified assistant language.
func (s *LanguageContextService) AssertUserFacingLanguage(ctx entities.LangCtx, declared string) error {
	if declared != ctx.AssistantLanguage {
		return apperrors.NewInvariantError(fmt.Sprintf(
			"language contract violation: user-facing message declared %q, assistant language is %q",
			declared, ctx.AssistantLanguage))
	}
	return nil
}

// AssertProviderLanguage guards outbound provider calls the same way.
func (s *LanguageContextService) AssertProviderLanguage(ctx entities.LangCtx, declared string) error {
	if declared != ctx.ProviderLanguage {
		return apperrors.NewInvariantError(fmt.Sprintf(
			"language contract violation: provider call declared %q, provider language is %q",
			declared, ctx.ProviderLanguage))
	}
	return nil
}

// Normalize maps an arbitrary detected language code onto the supported set,
// falling back to the default for unparseable or unsupported codes.
func (s *LanguageContextService) Normalize(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return s.fallback
	}
	if !s.supported[baseCode(tag)] {
		return s.fallback
	}
	matched, _, _ := s.matcher.Match(tag)
	return baseCode(matched)
}

// IsSupported reports whether code resolves to a language the assistant can
// narrate in.
func (s *LanguageContextService) IsSupported(code string) bool {
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	return s.supported[baseCode(tag)]
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
