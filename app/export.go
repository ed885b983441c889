package app

import (
	"encoding/json"
	"fmt"

	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
)

// ExportAppStateAndValidators exports the state of every genesis module at
// the last committed height. Zero-height exports keep positions as they are;
// the vault has no per-block state that needs resetting.
func (app *App) ExportAppStateAndValidators(modulesToExport []string) (servertypes.ExportedApp, error) {
	height := app.LastBlockHeight() + 1
	ctx := app.NewContextLegacy(true, cmtproto.Header{Height: height})

	wanted := make(map[string]bool, len(modulesToExport))
	for _, name := range modulesToExport {
		wanted[name] = true
	}

	appState := make(map[string]json.RawMessage, len(app.genesisModules))
	for _, m := range app.genesisModules {
		if len(wanted) > 0 && !wanted[m.Name()] {
			continue
		}
		appState[m.Name()] = m.ExportGenesis(ctx, app.appCodec)
	}

	bz, err := json.MarshalIndent(appState, "", "  ")
	if err != nil {
		return servertypes.ExportedApp{}, fmt.Errorf("marshal app state: %w", err)
	}

	return servertypes.ExportedApp{
		AppState:        bz,
		Height:          height,
		ConsensusParams: app.GetConsensusParams(ctx),
	}, nil
}
