package commands

import (
	"GophBox/internal/cli/api"
	"GophBox/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type dataResponse struct {
	Result string `json:"result"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Check authorization on server" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/test"
	token, _ := authStore(cfg).Load()
	resp, body, err := api.DoJSON(ctx, http.MethodPost, endpoint, struct{}{}, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, api.ErrorMessage(body))
	}
	var dr dataResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if login, err := authStore(cfg).LoadLogin(); err == nil {
		fmt.Fprintln(Out, "Login:", login)
	}
	fmt.Fprintln(Out, "Status:", dr.Result)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
