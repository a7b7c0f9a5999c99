// pkg/registry/schema.go
package registry

// ChatbotSettings is the publicly served widget configuration.
type ChatbotSettings struct {
	Name           string `json:"name"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	WelcomeMessage string `json:"welcomeMessage"`
	LogoURL        string `json:"logoUrl"`
	Active         bool   `json:"active"`
}

func DefaultSettings() *ChatbotSettings {
	return &ChatbotSettings{
		Name:           "AcadeZone Eğitim Asistanı",
		PrimaryColor:   "#3498db",
		SecondaryColor: "#2980b9",
		WelcomeMessage: "Merhaba! AcadeZone Eğitim Asistanı'na hoş geldiniz. " +
			"Size en uygun eğitim programlarını bulmak için yardımcı olabilirim. " +
			"Başlamak için adınızı öğrenebilir miyim?",
		LogoURL: "",
		Active:  true,
	}
}

var settingsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":           map[string]interface{}{"type": "string", "minLength": 1},
		"primaryColor":   map[string]interface{}{"type": "string"},
		"secondaryColor": map[string]interface{}{"type": "string"},
		"welcomeMessage": map[string]interface{}{"type": "string", "minLength": 1},
		"logoUrl":        map[string]interface{}{"type": "string"},
		"active":         map[string]interface{}{"type": "boolean"},
	},
	"additionalProperties": false,
}
