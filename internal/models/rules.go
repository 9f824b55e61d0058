package models

// CategoryRule maps a category name to the keywords that vote for it
type CategoryRule struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// InstitutionRule maps an issuer name to the sender id tokens it uses
type InstitutionRule struct {
	Name         string   `mapstructure:"name" yaml:"name"`
	SenderTokens []string `mapstructure:"sender_tokens" yaml:"sender_tokens"`
}
