package tcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{name: "verb only", input: "help", want: Command{Verb: "help", Args: []string{}}},
		{name: "with args", input: "buy BTC 500", want: Command{Verb: "buy", Args: []string{"BTC", "500"}}},
		{name: "trailing newline", input: "sell BTC\n", want: Command{Verb: "sell", Args: []string{"BTC"}}},
		{name: "trailing crlf", input: "login alice pw1\r\n", want: Command{Verb: "login", Args: []string{"alice", "pw1"}}},
		{name: "repeated spaces", input: "deposit   100", want: Command{Verb: "deposit", Args: []string{"100"}}},
		{name: "empty", input: "", want: Command{}},
		{name: "only newline", input: "\r\n", want: Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.input))
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	assert.Equal(t, []byte(SuccessfulOperation), EncodeResponse(SuccessfulOperation))
	assert.Equal(t, []byte(ProblemOccurred), EncodeResponse(""))
}

func TestClosesConnection(t *testing.T) {
	assert.True(t, ClosesConnection(DisconnectedSuccessfully))
	assert.True(t, ClosesConnection(ShutdownMessage))
	assert.False(t, ClosesConnection(SuccessfulOperation))
}
