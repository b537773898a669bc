package gemini

// generationPromptData is the template payload for prompt generation.
type generationPromptData struct {
	Title          string
	Author         string
	Excerpt        string
	PromptsPerBook int
}

// evaluationPromptData is the template payload for answer evaluation.
type evaluationPromptData struct {
	Question        string
	Options         []string
	SelectedOptions []string
	CorrectOptions  []string
	Correct         bool
}

// promptSchema is one multiple-choice prompt in the generation response.
type promptSchema struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndices []int    `json:"correct_indices"`
	Explanation    string   `json:"explanation,omitempty"`
	Concept        string   `json:"concept,omitempty"`
}

// generationSchema is the expected JSON structure of a generation response.
type generationSchema struct {
	Prompts []promptSchema `json:"prompts"`
}

// evaluationSchema is the expected JSON structure of an evaluation response.
type evaluationSchema struct {
	Feedback string `json:"feedback"`
}
