package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseHTTPSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

type wireMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

func (s *testChatSuite) TestDirectMessageFlow() {
	// Fresh identities so reruns against the same store stay independent
	alice := "alice-" + uuid.NewString()[:8]
	bob := "bob-" + uuid.NewString()[:8]

	s.Step("Both users connect")
	aliceConn := s.Socket(alice)
	defer aliceConn.Close()
	bobConn := s.Socket(bob)
	defer bobConn.Close()
	// Registration is fire-and-forget on the socket
	time.Sleep(200 * time.Millisecond)

	s.Step("Alice sends a message")
	var sent struct {
		Message string      `json:"message"`
		Msg     wireMessage `json:"msg"`
	}
	status := s.Do(http.MethodPost, "/messages", map[string]string{"from": alice, "to": bob, "text": "hello"}, &sent)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal("sent", sent.Message)

	s.Step("Both sockets receive new_message")
	for _, conn := range []interface {
		SetReadDeadline(time.Time) error
		ReadJSON(v any) error
	}{bobConn, aliceConn} {
		s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		s.Require().NoError(conn.ReadJSON(&frame))
		s.Require().Equal("new_message", frame.Event)
		var pushed wireMessage
		s.Require().NoError(json.Unmarshal(frame.Data, &pushed))
		s.Require().Equal(sent.Msg, pushed)
	}

	s.Step("History is the same from both sides")
	for _, query := range []string{"?user1=" + alice + "&user2=" + bob, "?user1=" + bob + "&user2=" + alice} {
		var history struct {
			Messages []wireMessage `json:"messages"`
		}
		s.Require().Equal(http.StatusOK, s.Do(http.MethodGet, "/messages"+query, nil, &history))
		s.Require().Equal([]wireMessage{sent.Msg}, history.Messages)
	}
}

func (s *testChatSuite) TestRejectsEmptyMessage() {
	var body struct {
		Message string `json:"message"`
	}
	status := s.Do(http.MethodPost, "/messages", map[string]string{"from": "alice", "to": "bob"}, &body)
	s.Require().Equal(http.StatusBadRequest, status)
	s.Require().NotEmpty(body.Message)
}
