package ai

import (
	"context"
	"strings"
)

// Offline answers from a fixed set of canned responses. It is used when no
// API key is configured so the assistant still replies in development.
type Offline struct{}

// NewOffline creates an Offline generator
func NewOffline() Offline {
	return Offline{}
}

// Generate picks a canned answer by keyword
func (Offline) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "express") || strings.Contains(lower, "server"):
		return offlineServerAnswer, nil
	case strings.Contains(lower, "hello"):
		return offlineHelloAnswer, nil
	default:
		return offlineDefaultAnswer, nil
	}
}

const offlineServerAnswer = "Here's a minimal HTTP server with JSON routes and error handling:\n\n" +
	"```javascript\n" +
	"const express = require('express');\n" +
	"const app = express();\n" +
	"const port = process.env.PORT || 3000;\n\n" +
	"app.use(express.json());\n\n" +
	"app.get('/', (req, res) => {\n" +
	"  res.json({ message: 'Welcome to the API!' });\n" +
	"});\n\n" +
	"app.use((err, req, res, next) => {\n" +
	"  console.error(err.stack);\n" +
	"  res.status(500).json({ error: 'Internal Server Error' });\n" +
	"});\n\n" +
	"app.listen(port, () => console.log(`Server listening on port ${port}`));\n" +
	"```\n\n" +
	"Install the dependency with `npm install express`."

const offlineHelloAnswer = `Hello, How can I help you today?

I can assist you with:
• Creating servers and API endpoints
• Building UI components
• Database integration
• Error handling
• Code optimization

Just ask me to create something specific!`

const offlineDefaultAnswer = `I'm your AI coding assistant! I can help you build:

🚀 Backend: servers, APIs, middleware, authentication
⚛️ Frontend: components, hooks, state management
🗄️ Database: queries, data modeling
🔧 DevOps: deployment, environment setup, debugging

What would you like to create today?`
