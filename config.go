package phylotree

// Config holds all environment variables
var Config struct {
	OpenAIAPIKey string
}
