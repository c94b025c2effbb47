package entities

// LangCtx is the staged language record threaded through pipeline stages.
//
// AssistantLanguage and AssistantLanguageConfidence are set once at the first
// classification stage and must never change afterwards; the services layer
// validates this on every update. UILanguage, ProviderLanguage and Region may
// be updated by later stages, e.g. a routing stage choosing a cheaper
// provider-facing language while the assistant keeps speaking the classified
// one.
type LangCtx struct {
	AssistantLanguage           string  `json:"assistant_language"`
	AssistantLanguageConfidence float64 `json:"assistant_language_confidence"`

	UILanguage       string `json:"ui_language"`
	ProviderLanguage string `json:"provider_language"`
	Region           string `json:"region,omitempty"`
}
