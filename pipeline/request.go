package pipeline

type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}

// Pipeline runs every loaded configuration on the request text and delivers
// one JSON response keyed by configuration name.
type Pipeline func(request Request) <-chan string
