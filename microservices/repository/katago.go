package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"game_arena/internal/bootstrap"
	"game_arena/internal/domain"
)

var ErrEngineClosed = errors.New("analysis engine is not running")

// KatagoClient drives a `katago analysis` process: one JSON query per line on
// stdin, answers on stdout matched back by query id.
type KatagoClient struct {
	cmd     *exec.Cmd
	stdin   *bufio.Writer
	closer  io.Closer
	mu      sync.Mutex
	pending sync.Map // query id -> chan domain.AnalysisResponse
	done    chan struct{}
	log     *zap.SugaredLogger
}

func NewKatagoClient(cfg *bootstrap.Config, log *zap.SugaredLogger) (*KatagoClient, error) {
	cmd := exec.Command(cfg.KatagoPath, "analysis", "-model", cfg.KatagoModel, "-config", cfg.KatagoConfig)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start katago: %w", err)
	}

	c := newKatagoClient(stdinPipe, stdoutPipe, log)
	c.cmd = cmd
	log.Infow("katago analysis engine started", "pid", cmd.Process.Pid, "model", cfg.KatagoModel)
	return c, nil
}

func newKatagoClient(stdin io.WriteCloser, stdout io.Reader, log *zap.SugaredLogger) *KatagoClient {
	c := &KatagoClient{
		stdin:  bufio.NewWriter(stdin),
		closer: stdin,
		done:   make(chan struct{}),
		log:    log,
	}
	go c.listen(stdout)
	return c
}

func (c *KatagoClient) listen(stdout io.Reader) {
	defer close(c.done)
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		var resp domain.AnalysisResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			c.log.Errorw("failed to decode katago line", "error", err, "line", string(line))
			continue
		}
		if resp.IsDuringSearch {
			continue
		}
		ch, ok := c.pending.LoadAndDelete(resp.ID)
		if !ok {
			c.log.Warnw("katago answered unknown query", "id", resp.ID)
			continue
		}
		ch.(chan domain.AnalysisResponse) <- resp
	}
	if err := sc.Err(); err != nil {
		c.log.Errorw("katago output closed", "error", err)
	}
}

// Query sends req and waits for its final answer or ctx.
func (c *KatagoClient) Query(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResponse, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	ch := make(chan domain.AnalysisResponse, 1)
	c.pending.Store(req.ID, ch)
	defer c.pending.Delete(req.ID)

	c.mu.Lock()
	_, err = c.stdin.Write(append(raw, '\n'))
	if err == nil {
		err = c.stdin.Flush()
	}
	c.mu.Unlock()
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("write katago query: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return resp, fmt.Errorf("katago: %s", resp.Error)
		}
		return resp, nil
	case <-c.done:
		return domain.AnalysisResponse{}, ErrEngineClosed
	case <-ctx.Done():
		return domain.AnalysisResponse{}, ctx.Err()
	}
}

func (c *KatagoClient) Close() error {
	err := c.closer.Close()
	if c.cmd != nil {
		if werr := c.cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
