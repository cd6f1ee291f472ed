package ws

import (
	"context"
	"encoding/json"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/domain"
)

// dispatch routes one inbound envelope to the session. Unknown events
// and undecodable payloads are logged and dropped; the session itself
// reports operation failures through result events.
func dispatch(ctx context.Context, session in.Session, msg envelope, log zerowrap.Logger) {
	switch msg.Event {
	case "server:join":
		if id, ok := decodeString(msg.Data); ok {
			session.Join(ctx, id)
		}
	case "server:leave":
		session.Leave(ctx)

	case "command":
		if cmd, ok := decodeString(msg.Data); ok {
			session.SendCommand(ctx, cmd)
		}
	case "start":
		session.Start(ctx)
	case "stop":
		session.Stop(ctx)
	case "restart":
		session.Restart(ctx)
	case "download":
		session.Download(ctx)
	case "wipe":
		session.Wipe(ctx)
	case "check-files":
		session.CheckFiles(ctx)

	case "logs:more":
		var params struct {
			CurrentCount int `json:"currentCount"`
			BatchSize    int `json:"batchSize"`
		}
		if len(msg.Data) > 0 && !decodeInto(msg.Data, &params, log) {
			return
		}
		session.FetchMoreLogs(ctx, params.CurrentCount, params.BatchSize)

	case "files:list":
		path, _ := decodeString(msg.Data)
		if path == "" {
			path = "/"
		}
		session.ListFiles(ctx, path)
	case "files:read":
		if path, ok := decodeString(msg.Data); ok {
			session.ReadFile(ctx, path)
		}
	case "files:save":
		var params struct {
			Path         string `json:"path"`
			Content      string `json:"content"`
			CreateBackup bool   `json:"createBackup"`
		}
		if decodeInto(msg.Data, &params, log) {
			session.SaveFile(ctx, params.Path, params.Content, params.CreateBackup)
		}
	case "files:mkdir":
		if path, ok := decodeString(msg.Data); ok {
			session.MakeDir(ctx, path)
		}
	case "files:delete":
		if path, ok := decodeString(msg.Data); ok {
			session.DeleteItem(ctx, path)
		}
	case "files:rename":
		var params struct {
			OldPath string `json:"oldPath"`
			NewPath string `json:"newPath"`
		}
		if decodeInto(msg.Data, &params, log) {
			session.RenameItem(ctx, params.OldPath, params.NewPath)
		}

	case "mods:list":
		session.ListMods(ctx)
	case "mods:search":
		var params domain.ModSearchParams
		if decodeInto(msg.Data, &params, log) {
			session.SearchMods(ctx, params)
		}
	case "mods:get":
		if projectID, ok := decodeString(msg.Data); ok {
			session.GetMod(ctx, projectID)
		}
	case "mods:install":
		var params in.InstallModParams
		if decodeInto(msg.Data, &params, log) {
			session.InstallMod(ctx, params)
		}
	case "mods:uninstall":
		if modID, ok := decodeString(msg.Data); ok {
			session.UninstallMod(ctx, modID)
		}
	case "mods:enable":
		if modID, ok := decodeString(msg.Data); ok {
			session.EnableMod(ctx, modID)
		}
	case "mods:disable":
		if modID, ok := decodeString(msg.Data); ok {
			session.DisableMod(ctx, modID)
		}
	case "mods:check-config":
		session.CheckModConfig(ctx)
	case "mods:classifications":
		session.ModClassifications(ctx)
	case "mods:check-updates":
		session.CheckModUpdates(ctx)
	case "mods:update":
		var params in.UpdateModParams
		if decodeInto(msg.Data, &params, log) {
			session.UpdateMod(ctx, params)
		}

	case "update:check":
		session.CheckUpdate(ctx)
	case "update:apply":
		session.ApplyUpdate(ctx)

	default:
		log.Debug().Str("event", msg.Event).Msg("ignoring unknown event")
	}
}

func decodeString(data json.RawMessage) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeInto(data json.RawMessage, v any, log zerowrap.Logger) bool {
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Msg("discarding malformed event payload")
		return false
	}
	return true
}
