package config

// SampleConfig returns a fully commented configuration file template.
func SampleConfig() string {
	return `# logtriage configuration file
version: "1.0"

input:
  # Fail on malformed timestamps instead of skipping the record.
  strict: false
  # Lowest log level ingested: debug, trace, info, warn, error, fatal.
  min_level: warn

classifier:
  # Distinct raw examples kept per error group.
  max_examples: 5
  # Maximum length of each kept example, in characters.
  max_example_length: 200
  # Warning groups seen more often than this become high criticality.
  escalation_threshold: 50

ai:
  # Advisory provider: gigachat, openai. Leave empty to disable the
  # advisory call and report classification results only.
  provider: gigachat
  model: ""
  # GigaChat credentials. Prefer the GIGACHAT_AUTH_KEY and
  # GIGACHAT_CLIENT_ID environment variables over storing them here.
  auth_key: ""
  client_id: ""
  scope: GIGACHAT_API_PERS
  # OpenAI bearer key; the OPENAI_API_KEY environment variable also works.
  api_key: ""
  temperature: 0.3
  timeout: 60s
  insecure_skip_verify: false

output:
  # Report format: json, csv, markdown, terminal.
  default_format: json
  # Color mode for terminal output: auto, always, never.
  color_mode: auto
  verbose: false
  # Report file destination. Empty writes to stdout.
  path: ""
`
}

// MinimalSampleConfig returns a compact template with essential settings.
func MinimalSampleConfig() string {
	return `version: "1.0"

input:
  min_level: warn

ai:
  provider: gigachat

output:
  default_format: json
`
}
