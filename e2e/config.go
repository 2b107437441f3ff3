package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	GatewayAddr string `envconfig:"GATEWAY_ADDR"`
	// Session cookie presented at dial time; must exist in the gateway's
	// session store (the seed tool writes sid-alice, sid-bob, ...).
	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"taskline_sid"`
	SessionID  string `envconfig:"E2E_SESSION_ID" default:"sid-alice"`
	// Conversation the scenario joins; seeded ids are printed by the tool.
	ConversationID string `envconfig:"E2E_CONVERSATION_ID"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
