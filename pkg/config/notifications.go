package config

// NotificationsConfig controls the optional Slack escalation/completion
// notifications. A blank Channel (the default) leaves notifications
// disabled; the bot token itself always comes from an environment
// variable, never YAML, matching how LLMProviderConfig keeps APIKeyEnv
// separate from the provider's own fields.
type NotificationsConfig struct {
	SlackChannel     string `yaml:"slack_channel"`
	SlackTokenEnv    string `yaml:"slack_token_env"`
	DashboardBaseURL string `yaml:"dashboard_base_url"`
}

// DefaultNotificationsConfig returns the built-in notifications defaults:
// disabled, since no channel is configured out of the box.
func DefaultNotificationsConfig() *NotificationsConfig {
	return &NotificationsConfig{
		SlackTokenEnv: "SLACK_BOT_TOKEN",
	}
}

// Enabled reports whether enough configuration is present to post to
// Slack.
func (c *NotificationsConfig) Enabled() bool {
	return c != nil && c.SlackChannel != ""
}
