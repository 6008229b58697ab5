package signals

// Keyword tables. Matching is done on lowercased text.

var spanishMarkers = []string{
	"hola", "gracias", "por favor", "precio", "costo", "programa", "curso",
	"inscripción", "inscripcion", "telefono", "teléfono", "correo",
	"ayuda financiera", "matricula", "matrícula", "cuánto", "cuanto",
	"¿", "¡", "español", "espanol",
}

var englishMarkers = []string{
	"hello", "hi", "thanks", "price", "cost", "program", "course",
	"enrollment", "contact", "phone", "email", "financial aid",
}

var pricingKeywords = []string{
	"price", "tuition", "cost", "fee", "fees",
	"precio", "costo", "cuánto", "cuanto",
}

var paymentKeywords = []string{
	"payment plan", "payment options", "monthly", "weekly", "financing",
	"financial aid", "plan de pago", "opciones de pago", "mensual",
	"semanal", "financiamiento", "ayuda financiera",
}

var interestKeywords = []string{
	"program", "course", "interested", "start", "apply", "enroll",
	"esthetics", "nails", "waxing", "makeup", "cidesco", "skincare",
	"skin care", "cosmetology", "manicure", "teacher training", "barbering",
	"estética", "estetica", "uñas", "maquillaje", "depilación", "inscribirme",
}

var readyKeywords = []string{
	"ready", "sign up", "apply", "quiero", "listo", "lista", "enroll", "start",
}

var locationKeywords = []string{
	"new york", "ny", "manhattan", "new jersey", "nj", "wayne",
}

var advisorPhrases = []string{
	"enrollment advisor", "enrollment team", "advisor will contact",
	"asesor de inscripción", "asesor de inscripcion", "equipo de inscripción",
	"equipo de inscripcion", "asesor se comunicará", "asesor se comunicara",
}

// completionPhrases must match the whole message.
var completionPhrases = map[string]struct{}{
	"nope":                {},
	"no":                  {},
	"no thanks":           {},
	"no thank you":        {},
	"thanks":              {},
	"thank you":           {},
	"thank you so much":   {},
	"that's correct":      {},
	"yes that is correct": {},
	"yes that's correct":  {},
	"sounds good":         {},
	"looks good":          {},
	"i'm good":            {},
	"im good":             {},
	"that's all":          {},
	"thats all":           {},
	"nothing else":        {},
	"gracias":             {},
	"muchas gracias":      {},
	"nada":                {},
	"nada más":            {},
	"perfecto":            {},
	"está bien":           {},
	"esta bien":           {},
}
