package prim

import "fmt"

// Prompt builders. Each primitive maps its arguments to a canonical
// system + user message pair plus generation options. Builders are pure:
// identical inputs produce byte-identical output, so they are testable
// without a backend.

const classifySystem = "Classify the following text with the provided instruction and choices. " +
	"To classify, provide the key of the choice:\n{\"classification\": string}\n\n" +
	"For example, if the correct choice is 'Z. description of choice Z', then provide 'Z' " +
	"as the classification as valid JSON:\n{\"classification\": \"Z\"}"

const scoreIntSystem = "Score the following text with the provided instruction and range " +
	"as an integer value as valid JSON:\n{\"score\": int}"

const scoreFloatSystem = "Score the following text with the provided instruction and range " +
	"as a float value as valid JSON:\n{\"score\": float}"

const parseSystem = "Parse the following text with the provided schema."

func structuredOptions() GenerationOptions {
	return NewOptions().Temperature(DefaultTemperature).ForceJSON(true).Build()
}

func classifyPrompt(instruction, text string, set choiceSet) ([]Message, GenerationOptions) {
	user := fmt.Sprintf("Instruction:\n%s\n\nText:\n%s\n\nChoices:\n%s\n\nValid JSON:",
		instruction, text, set.display)
	messages := []Message{
		{Role: RoleSystem, Content: classifySystem},
		{Role: RoleUser, Content: user},
	}
	return messages, structuredOptions()
}

func generatePrompt(instruction, text string) ([]Message, GenerationOptions) {
	messages := []Message{
		{Role: RoleSystem, Content: instruction},
		{Role: RoleUser, Content: text},
	}
	return messages, NewOptions().Temperature(DefaultTemperature).Build()
}

func scoreIntPrompt(instruction, text string, min, max int64) ([]Message, GenerationOptions) {
	user := fmt.Sprintf("Instruction:\n%s\n\nText:\n%s\n\nRange:\n[%d, %d]\n\nValid JSON:",
		instruction, text, min, max)
	messages := []Message{
		{Role: RoleSystem, Content: scoreIntSystem},
		{Role: RoleUser, Content: user},
	}
	return messages, structuredOptions()
}

func scoreFloatPrompt(instruction, text string, min, max float64) ([]Message, GenerationOptions) {
	user := fmt.Sprintf("Instruction:\n%s\n\nText:\n%s\n\nRange:\n[%v, %v]\n\nValid JSON:",
		instruction, text, min, max)
	messages := []Message{
		{Role: RoleSystem, Content: scoreFloatSystem},
		{Role: RoleUser, Content: user},
	}
	return messages, structuredOptions()
}

func parsePrompt(text, schema string) ([]Message, GenerationOptions) {
	user := fmt.Sprintf("Text:\n%s\n\nSchema:\n%s\n\nValid JSON:", text, schema)
	messages := []Message{
		{Role: RoleSystem, Content: parseSystem},
		{Role: RoleUser, Content: user},
	}
	return messages, structuredOptions()
}
