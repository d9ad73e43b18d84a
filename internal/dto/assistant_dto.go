package dto

type AskRequest struct {
	Message      string `json:"message" validate:"max=4000"`
	Confirmation *bool  `json:"confirmation,omitempty"`
	Regenerate   bool   `json:"regenerate,omitempty"`
	SkipPreview  bool   `json:"skip_preview,omitempty"`
}

type AskResponse struct {
	Message           string `json:"message"`
	NeedsConfirmation bool   `json:"needsConfirmation"`
	ConfirmationType  string `json:"confirmationType,omitempty"`
	DocUrl            string `json:"docUrl,omitempty"`
}
