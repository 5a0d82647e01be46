package vision

import "context"

// MockClient is a configurable vision client for testing and keyless
// deployments. Set Response/Err to control what AnalyzeImage returns; the
// default empty response makes every provider fall back to its placeholder
// opinion.
type MockClient struct {
	Response string
	Err      error

	// Call tracking for assertions
	Calls []MockCall
}

type MockCall struct {
	SystemPrompt string
	UserPrompt   string
	ByteLen      int
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) AnalyzeImage(ctx context.Context, fileBytes []byte, systemPrompt, userPrompt string) (string, error) {
	c.Calls = append(c.Calls, MockCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		ByteLen:      len(fileBytes),
	})
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
