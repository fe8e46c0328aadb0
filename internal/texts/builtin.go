// Package texts provides the paragraph pool for typing tests.
package texts

var builtin = []string{
	"Typing is an essential skill in the modern world. Practicing regularly helps improve your speed and accuracy. The more you type, the more confident you become, and soon you’ll be able to type without even looking at the keyboard.",
	"Learning to type efficiently can save you a lot of time in your daily work. Start slowly and focus on accuracy first. Remember, speed will come naturally as your fingers get used to the movements required for each key.",
	"Consistency is key when it comes to typing. Even dedicating just ten minutes a day to practice can make a huge difference over time. Set goals, track your progress, and celebrate your improvements along the way.",
	"Typing is not just about pressing keys quickly. It is about rhythm, posture, and finger placement. By paying attention to these details, you can prevent fatigue and develop a smooth, effortless typing style.",
	"With enough practice, you can type almost anything without looking at the keyboard. This skill opens up opportunities for faster communication, efficient coding, and easier writing. Keep practicing, and soon typing will feel natural.",
}

// Builtin returns a copy of the default paragraph pool.
func Builtin() []string {
	return append([]string(nil), builtin...)
}
