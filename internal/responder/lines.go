// lines.go centralises every canned reply. Edit this file to change the
// assistant's personality.
package responder

import (
	"fmt"
	"strings"
)

const pythonDescription = "Python is a high-level, interpreted programming language known for its simplicity and readability. " +
	"It was created by Guido van Rossum and released in 1991. " +
	"Python supports multiple programming paradigms, including procedural, object-oriented, and functional programming. " +
	"It's widely used in web development, data science, artificial intelligence, automation, and more."

var marathiJokes = []string{
	"शिक्षक: तुम्ही उशिरा का आलात? विद्यार्थी: सर, तुम्हीच तर शिकवलं की Time and Tide wait for none.",
	"डॉक्टर: तुम्हाला काय त्रास आहे? पेशंट: डोकं दुखतंय. डॉक्टर: किती दिवसांपासून? पेशंट: शनिवारपासून. डॉक्टर: मग आज सोमवार आहे, इतके दिवस का थांबलात? पेशंट: माझं डोकं, मला ठरवायचं किती दिवस दुखायचं.",
	"एक मराठी माणूस हॉटेलमध्ये: 'वेटर, मटण आणि भात आणा'. वेटर: 'सर, मटण संपलं'. मराठी माणूस: 'मग काय ते आणा आणि भात आणा.'",
	"मुलगा: बाबा, माझं लग्न ठरलं. बाबा: कुठल्या जातीची आहे? मुलगा: प्रजाती तर नाही, पण ती सुद्धा मानव आहे.",
}

var englishJokes = []string{
	"Why don't scientists trust atoms? Because they make up everything!",
	"Did you hear about the mathematician who's afraid of negative numbers? He'll stop at nothing to avoid them!",
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"What do you call a fake noodle? An impasta!",
	"Why couldn't the bicycle stand up by itself? It was two tired!",
}

// MarathiJokes returns a copy of the Marathi joke pool.
func MarathiJokes() []string { return append([]string(nil), marathiJokes...) }

// EnglishJokes returns a copy of the English joke pool.
func EnglishJokes() []string { return append([]string(nil), englishJokes...) }

// ── Reminders ────────────────────────────────────────────────────

func LineReminderAdded(task string) string {
	return fmt.Sprintf("I'll remind you to %s.", task)
}

func LineReminderWhat() string {
	return "What would you like me to remind you about?"
}

func LineNoReminders() string {
	return "You don't have any reminders set."
}

// LineReminderList renders a header followed by one "- task" line per reminder.
func LineReminderList(reminders []string) string {
	var b strings.Builder
	b.WriteString("Here are your reminders:")
	for _, r := range reminders {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}

// ── Fallback table ───────────────────────────────────────────────

func LineGreeting(userName string) string {
	return fmt.Sprintf("Hello %s! How can I help you today?", userName)
}

func LineName(assistant string) string {
	return fmt.Sprintf("My name is %s. I'm a virtual assistant created to help you.", assistant)
}

func LineTime(hhmm string) string {
	return fmt.Sprintf("The current time is %s.", hhmm)
}

func LineDate(date string) string {
	return fmt.Sprintf("Today is %s.", date)
}

func LineSearch(query string) string {
	return fmt.Sprintf("I would search for '%s' for you.", query)
}

func LineSearchWhat() string {
	return "What would you like me to search for?"
}

func LineWeather() string {
	return "I would normally check the weather for you, but I don't have access to weather data in this implementation."
}

func LineFarewell() string {
	return "Goodbye! Have a great day!"
}

func LineUnknown() string {
	return "I'm not sure how to respond to that. Is there something specific you'd like help with?"
}

// MarathiRequest rewrites an "... in marathi" request the way the
// language backend expects it.
func MarathiRequest(input string) string {
	rest := strings.TrimSpace(strings.ReplaceAll(input, "in marathi", ""))
	return "Please respond in Marathi to: " + rest
}
