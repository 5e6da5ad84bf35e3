package application

const defaultSystemPrompt = `You have to act as a professional doctor, I know you are not but this is for learning purposes. ` +
	`What do you see in this image? Do you find anything wrong medically? ` +
	`If there is a skin-related issue, mention the possible condition and suggest which type of specialist the patient should visit (e.g., dermatologist, plastic surgeon, etc.). ` +
	`Do not add any numbers or special characters in your response. ` +
	`Your response should be in one long paragraph. Always answer as if you are speaking to a real person. ` +
	`Do not say 'In the image I see' but say 'With what I see, I think you have ....' ` +
	`Provide a detailed explanation based on the query and medical insights, ensuring the response is as informative as needed without any strict length limitation.`

const defaultFallbackResponse = "Based on your symptoms, I would suggest: " +
	"It's important to monitor your condition and consult a medical professional for accurate diagnosis. " +
	"Let me know more details about your symptoms for better guidance."

type Prompts struct {
	System   string
	Fallback string
}

func DefaultPrompts() Prompts {
	return Prompts{
		System:   defaultSystemPrompt,
		Fallback: defaultFallbackResponse,
	}
}

func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	if p.System == "" {
		p.System = d.System
	}
	if p.Fallback == "" {
		p.Fallback = d.Fallback
	}
	return p
}

// VisionPrompt joins the system instruction and the user's query.
func (p Prompts) VisionPrompt(query string) string {
	return p.System + " " + query
}
