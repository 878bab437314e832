package dto

// Envelope cuerpo uniforme de todas las respuestas JSON.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// OK envelope de éxito.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail envelope de error con código estable.
func Fail(code, message string) Envelope {
	return Envelope{Success: false, Error: message, Code: code}
}
