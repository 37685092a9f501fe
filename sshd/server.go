package sshd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"golang.org/x/crypto/ssh"

	"github.com/ruslanjabari/video-to-ascii/render"
)

// Config is the read-only configuration shared by all sessions.
type Config struct {
	Addr        string
	VideoPath   string
	Kind        render.Kind
	HostKeyPath string
}

// Server accepts SSH connections and streams the configured video to each
// client in its own session.
type Server struct {
	cfg      Config
	sshCfg   *ssh.ServerConfig
	listener net.Listener
}

// NewServer loads the host key and prepares the SSH server config.
// Authentication policy is out of scope: any password or key is accepted,
// the username is just recorded on the session.
func NewServer(cfg Config) (*Server, error) {
	if cfg.HostKeyPath == "" {
		cfg.HostKeyPath = "ssh_host_key"
	}
	signer, err := loadOrGenerateHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			return nil, nil
		},
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	sshCfg.AddHostKey(signer)

	return &Server{cfg: cfg, sshCfg: sshCfg}, nil
}

// ListenAndServe runs the accept loop until the context is cancelled.
// A listener bind failure is fatal; per-client failures are logged and
// never stop the loop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	log.Printf("SSH video server running on %s", s.cfg.Addr)
	log.Printf("Streaming video: %s", s.cfg.VideoPath)
	log.Printf("Using strategy: %s", s.cfg.Kind)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Accept error: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	addr := conn.RemoteAddr()
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, s.sshCfg)
	if err != nil {
		log.Printf("Handshake failed for %s: %v", addr, err)
		conn.Close()
		return
	}
	defer sshConn.Close()
	log.Printf("Connection from %s (user %s)", addr, sshConn.User())

	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			log.Printf("Channel accept failed for %s: %v", addr, err)
			continue
		}
		session := newSession(channel, sshConn.User(), addr.String(), s.cfg)
		go session.handleRequests(ctx, requests)
	}
}
