package model

import "github.com/m-mizutani/goerr/v2"

// Persona holds the assistant's name and canned response pools
type Persona struct {
	Name        string
	Greetings   []string
	Farewells   []string
	Unknown     []string
	Jokes       []string
	Quotes      []string
	NewsSources []string
}

// DefaultPersona returns the built-in persona
func DefaultPersona() *Persona {
	return &Persona{
		Name: "Jarvis",
		Greetings: []string{
			"Hello! I'm Jarvis, your AI assistant. How can I help you today?",
			"Hi there! Ready to assist you with anything you need.",
			"Greetings! What can I do for you today?",
		},
		Farewells: []string{
			"Goodbye! Have a great day!",
			"See you later! Take care!",
			"Until next time! Stay awesome!",
		},
		Unknown: []string{
			"I'm not sure I understand. Could you rephrase that?",
			"That's an interesting question. Let me think about it differently.",
			"I don't have a specific answer for that, but I'm here to help however I can.",
		},
		Jokes: []string{
			"Why don't scientists trust atoms? Because they make up everything!",
			"Why did the scarecrow win an award? He was outstanding in his field!",
			"Why don't eggs tell jokes? They'd crack each other up!",
			"What do you call a fake noodle? An impasta!",
			"Why did the coffee file a police report? It got mugged!",
			"Why don't programmers like nature? It has too many bugs!",
			"How many programmers does it take to change a light bulb? None, that's a hardware problem!",
		},
		Quotes: []string{
			"The only way to do great work is to love what you do. - Steve Jobs",
			"Innovation distinguishes between a leader and a follower. - Steve Jobs",
			"Life is what happens to you while you're busy making other plans. - John Lennon",
			"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
			"It is during our darkest moments that we must focus to see the light. - Aristotle",
			"Success is not final, failure is not fatal: it is the courage to continue that counts. - Winston Churchill",
		},
		NewsSources: []string{
			"BBC News: bbc.com/news",
			"Reuters: reuters.com",
			"CNN: cnn.com",
			"AP News: apnews.com",
			"NPR: npr.org",
		},
	}
}

// Validate checks that every pool used for random selection is non-empty
func (p *Persona) Validate() error {
	if p.Name == "" {
		return goerr.Wrap(ErrInvalidPersona, "persona name is required")
	}

	pools := []struct {
		name string
		pool []string
	}{
		{"greetings", p.Greetings},
		{"farewells", p.Farewells},
		{"unknown", p.Unknown},
		{"jokes", p.Jokes},
		{"quotes", p.Quotes},
		{"news_sources", p.NewsSources},
	}
	for _, pl := range pools {
		if len(pl.pool) == 0 {
			return goerr.Wrap(ErrInvalidPersona, "response pool must not be empty", goerr.V("pool", pl.name))
		}
		for i, s := range pl.pool {
			if s == "" {
				return goerr.Wrap(ErrInvalidPersona, "response must not be empty",
					goerr.V("pool", pl.name), goerr.V("index", i))
			}
		}
	}

	return nil
}
