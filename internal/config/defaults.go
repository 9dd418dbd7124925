package config

const (
	defaultConfigPath               = "~/.config/litman/config.toml"
	defaultDataDir                  = "~/.local/share/litman"
	defaultLogDir                   = "~/.local/share/litman/logs"
	defaultLogRetentionDays         = 30
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultLLMBaseURL               = "https://api.moonshot.cn/v1"
	defaultLLMModel                 = "moonshot-v1-128k"
	defaultLLMReferer               = "https://github.com/Saeran-Chang/SmartLiteratureManager"
	defaultLLMTitle                 = "litman"
	defaultIngestionTimeoutSeconds  = 30
	defaultIngestionFallbackChars   = 2000
	defaultIngestionMaxTokens       = 2000
	defaultIngestionTemperature     = 0.3
	defaultAnalysisTimeoutSeconds   = 30
	defaultAnalysisMaxRetries       = 10
	defaultAnalysisBackoffSeconds   = 2
	defaultAnalysisRatePadding      = 10
	defaultAnalysisRetryAfter       = 60
	defaultAnalysisMaxTokens        = 1000
	defaultAnalysisTemperature      = 0.3
	defaultConversationTimeout      = 60
	defaultConversationMaxTokens    = 4096
	defaultShutdownGraceSeconds     = 3
	defaultShutdownPollMillis       = 100
	defaultTargetLanguage           = "Chinese"
	defaultMinFreeMiB               = 64
	apiKeyEnv                       = "LITMAN_API_KEY"
	legacyAPIKeyEnv                 = "MOONSHOT_API_KEY"
	defaultConversationTemperature  = 0.0
	defaultWorkflowReanalyzeOnStart = true
	defaultNotifyTimeoutSeconds     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL: defaultLLMBaseURL,
			Model:   defaultLLMModel,
			Referer: defaultLLMReferer,
			Title:   defaultLLMTitle,
		},
		Ingestion: Ingestion{
			TimeoutSeconds: defaultIngestionTimeoutSeconds,
			FallbackChars:  defaultIngestionFallbackChars,
			MaxTokens:      defaultIngestionMaxTokens,
			Temperature:    defaultIngestionTemperature,
		},
		Analysis: Analysis{
			TimeoutSeconds:           defaultAnalysisTimeoutSeconds,
			MaxRetries:               defaultAnalysisMaxRetries,
			BackoffBaseSeconds:       defaultAnalysisBackoffSeconds,
			RateLimitPaddingSeconds:  defaultAnalysisRatePadding,
			DefaultRetryAfterSeconds: defaultAnalysisRetryAfter,
			MaxTokens:                defaultAnalysisMaxTokens,
			Temperature:              defaultAnalysisTemperature,
		},
		Conversation: Conversation{
			TimeoutSeconds: defaultConversationTimeout,
			MaxTokens:      defaultConversationMaxTokens,
			Temperature:    defaultConversationTemperature,
		},
		Workflow: Workflow{
			ShutdownGraceSeconds: defaultShutdownGraceSeconds,
			ShutdownPollMillis:   defaultShutdownPollMillis,
			ReanalyzeOnStart:     defaultWorkflowReanalyzeOnStart,
			TargetLanguage:       defaultTargetLanguage,
			MinFreeMiB:           defaultMinFreeMiB,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
