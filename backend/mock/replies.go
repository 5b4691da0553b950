package mock

const replyLayers = `For structuring your application, I recommend following a layered architecture:

1. **Presentation Layer**: Handle user interactions
2. **Business Logic Layer**: Core application logic
3. **Data Access Layer**: Database and external API interactions
4. **Cross-Cutting Concerns**: Logging, security, error handling

This separation of concerns will make your application more maintainable and testable. Would you like me to elaborate on any of these layers?`

const replyPractices = `Based on best practices, I recommend:

1. Start with a clear domain model
2. Use dependency injection for flexibility
3. Implement comprehensive error handling
4. Write tests as you develop
5. Document your architectural decisions

These practices will ensure your project remains maintainable as it grows. What specific aspect would you like to explore further?`

const replyREST = `For a REST API design, consider these principles:

1. **Resource-Based URLs**: Use nouns, not verbs (e.g., /users, not /getUsers)
2. **HTTP Methods**: GET (read), POST (create), PUT (update), DELETE (remove)
3. **Status Codes**: Use appropriate HTTP status codes
4. **Versioning**: Include version in URL or headers
5. **Documentation**: OpenAPI/Swagger specification

This approach ensures a consistent and predictable API. Shall I help you design specific endpoints?`

const replyStrategicDefault = `I understand you're looking for strategic guidance. Let me analyze the situation:

The key consideration here is balancing immediate needs with long-term maintainability. I recommend starting with a simple, well-structured foundation that can evolve as requirements become clearer.

What specific aspects of this challenge would you like to explore?`

const replyFunction = "I'll create that function for you:\n\n" +
	"```go\n" +
	`func processData(items []Item) ([]Item, error) {
	if items == nil {
		return nil, errors.New("input must not be nil")
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		item.Processed = true
		item.Timestamp = time.Now()
		out = append(out, item)
	}
	return out, nil
}
` + "```\n\n" +
	"This function validates its input and returns a new slice of processed items. Would you like me to add more specific functionality?"

const replyEndpoint = "Here's a REST endpoint implementation:\n\n" +
	"```go\n" +
	`mux.HandleFunc("GET /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
	user, err := users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(user)
})
` + "```\n\n" +
	"This endpoint includes error handling and appropriate status codes. Need me to implement other CRUD operations?"

const replyDebug = `I'll help you debug this issue. Based on the context, here are the steps:

1. First, let's check the error logs
2. Verify the input data format
3. Add logging at key points
4. Check for any concurrency issues

Can you share the specific error message or problematic code?`

const replyInstall = "To install the required package, run:\n\n" +
	"```bash\nnpm install express\n```\n\n" +
	"This will add Express.js to your project."

const replyCleanup = "You can clean up the temporary files with `rm -rf /tmp` once nothing else is using them."

const replyImplementationDefault = `I'll help you implement that. Here's a practical approach:

1. Define the interface/types first
2. Implement the core logic
3. Add error handling
4. Write unit tests

Let me know which part you'd like to start with, and I'll provide the specific implementation.`
