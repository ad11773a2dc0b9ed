// Package smtptest runs a minimal in-process SMTP server for tests.
//
// The server speaks enough ESMTP for a go-mail client over plain TCP:
// EHLO, AUTH CRAM-MD5, MAIL, RCPT, DATA, RSET, NOOP and QUIT.
package smtptest

import (
	"bufio"
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"slices"
	"strings"
	"sync"
	"testing"
)

// Config describes the accounts and recipients the server knows.
type Config struct {
	// Username and Password are the only accepted credentials. An empty
	// Username disables AUTH.
	Username string
	Password string

	// Reject lists recipients answered with 550 at RCPT.
	Reject []string
}

// Message is one accepted message.
type Message struct {
	From string
	To   []string
	Data string
}

// Server is a running SMTP server bound to 127.0.0.1.
type Server struct {
	cfg Config
	ln  net.Listener
	wg  sync.WaitGroup

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	dials    int
	messages []Message
}

// Start listens on a free local port and serves until the test ends.
func Start(tb testing.TB, cfg Config) *Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("smtptest: listen: %v", err)
	}

	s := &Server{cfg: cfg, ln: ln, conns: make(map[net.Conn]struct{})}
	s.wg.Add(1)
	go s.serve()

	tb.Cleanup(s.Close)
	return s
}

// Host returns the listening address.
func (s *Server) Host() string { return "127.0.0.1" }

// Port returns the listening port.
func (s *Server) Port() int { return s.ln.Addr().(*net.TCPAddr).Port }

// Dials returns the number of accepted connections.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Messages returns the accepted messages in arrival order.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Recipients returns the recipients of every accepted message.
func (s *Server) Recipients() []string {
	var out []string
	for _, m := range s.Messages() {
		out = append(out, m.To...)
	}
	return out
}

// Close stops the server and drops every open session.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.dials++
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				_ = conn.Close()
			}()
			s.session(conn)
		}()
	}
}

type session struct {
	r     *bufio.Reader
	w     *bufio.Writer
	authd bool
	from  string
	to    []string
}

func (ss *session) reply(format string, args ...any) bool {
	_, _ = fmt.Fprintf(ss.w, format+"\r\n", args...)
	return ss.w.Flush() == nil
}

func (ss *session) readLine() (string, bool) {
	line, err := ss.r.ReadString('\n')
	if err != nil {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (s *Server) session(conn net.Conn) {
	ss := &session{r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
	if !ss.reply("220 smtptest ESMTP ready") {
		return
	}

	for {
		line, ok := ss.readLine()
		if !ok {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")

		switch strings.ToUpper(verb) {
		case "EHLO":
			if s.cfg.Username != "" {
				ss.reply("250-smtptest\r\n250-AUTH CRAM-MD5\r\n250 HELP")
			} else {
				ss.reply("250-smtptest\r\n250 HELP")
			}
		case "HELO", "NOOP":
			ss.reply("250 OK")
		case "AUTH":
			s.auth(ss, arg)
		case "MAIL":
			if s.cfg.Username != "" && !ss.authd {
				ss.reply("530 5.7.0 authentication required")
				continue
			}
			ss.from = address(arg)
			ss.to = nil
			ss.reply("250 OK")
		case "RCPT":
			to := address(arg)
			if slices.Contains(s.cfg.Reject, to) {
				ss.reply("550 5.1.1 no such user")
				continue
			}
			ss.to = append(ss.to, to)
			ss.reply("250 OK")
		case "DATA":
			if len(ss.to) == 0 {
				ss.reply("503 5.5.1 no valid recipients")
				continue
			}
			ss.reply("354 end data with <CR><LF>.<CR><LF>")
			data, ok := ss.readData()
			if !ok {
				return
			}
			s.mu.Lock()
			s.messages = append(s.messages, Message{From: ss.from, To: ss.to, Data: data})
			s.mu.Unlock()
			ss.from, ss.to = "", nil
			ss.reply("250 2.0.0 queued")
		case "RSET":
			ss.from, ss.to = "", nil
			ss.reply("250 OK")
		case "QUIT":
			ss.reply("221 bye")
			return
		default:
			ss.reply("502 5.5.2 command not recognised")
		}
	}
}

func (s *Server) auth(ss *session, arg string) {
	if s.cfg.Username == "" || !strings.EqualFold(strings.TrimSpace(arg), "CRAM-MD5") {
		ss.reply("504 5.5.4 mechanism not supported")
		return
	}

	challenge := "<1896.697170952@smtptest>"
	ss.reply("334 %s", base64.StdEncoding.EncodeToString([]byte(challenge)))

	line, ok := ss.readLine()
	if !ok {
		return
	}
	resp, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		ss.reply("501 5.5.2 cannot decode response")
		return
	}

	mac := hmac.New(md5.New, []byte(s.cfg.Password))
	mac.Write([]byte(challenge))
	want := s.cfg.Username + " " + hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal(resp, []byte(want)) {
		ss.reply("535 5.7.8 bad credentials")
		return
	}

	ss.authd = true
	ss.reply("235 2.7.0 authentication successful")
}

func (ss *session) readData() (string, bool) {
	var b strings.Builder
	for {
		line, ok := ss.readLine()
		if !ok {
			return "", false
		}
		if line == "." {
			return b.String(), true
		}
		b.WriteString(strings.TrimPrefix(line, "."))
		b.WriteString("\n")
	}
}

// address extracts the mailbox from "FROM:<a@b> BODY=8BITMIME".
func address(arg string) string {
	start := strings.IndexByte(arg, '<')
	end := strings.IndexByte(arg, '>')
	if start < 0 || end < start {
		return ""
	}
	return arg[start+1 : end]
}
