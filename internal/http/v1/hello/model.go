package hello

// Greeting models the response payload for hello endpoints.
type Greeting struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello World"`
}

// WorldOutput is the response of GET /hello/world.
type WorldOutput struct {
	Body Greeting
}
