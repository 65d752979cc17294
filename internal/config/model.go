package config

import "github.com/JaimeStill/bleak/internal/model"

var modelEnv = &model.Env{
	Provider:    "BLEAK_MODEL_PROVIDER",
	BaseURL:     "BLEAK_MODEL_BASE_URL",
	APIKey:      "BLEAK_MODEL_API_KEY",
	Name:        "BLEAK_MODEL_NAME",
	MaxTokens:   "BLEAK_MODEL_MAX_TOKENS",
	Temperature: "BLEAK_MODEL_TEMPERATURE",
}
