package config

import (
	"strings"

	"github.com/vtcode-ai/vtcode/internal/agent"
	"github.com/vtcode-ai/vtcode/internal/agent/loopdetect"
	"github.com/vtcode-ai/vtcode/internal/tools/pty"
)

// ApplyAgentConfig translates AgentConfig onto a LoopConfig, following the
// same override-only-if-set convention as EffectiveContextPruningSettings.
func ApplyAgentConfig(cfg AgentConfig, loopCfg *agent.LoopConfig) {
	if loopCfg == nil {
		return
	}
	if mode := strings.ToLower(strings.TrimSpace(cfg.SystemPromptMode)); mode != "" {
		loopCfg.SystemPromptMode = agent.SystemPromptMode(mode)
	}
	if mode := strings.ToLower(strings.TrimSpace(cfg.ToolDocumentationMode)); mode != "" {
		loopCfg.ToolDocLevel = agent.ToolDocLevel(mode)
	}
	if cfg.EnableSplitToolResults != nil {
		loopCfg.EnableSplitToolResults = *cfg.EnableSplitToolResults
	}
	if cfg.SkipLoopDetection {
		loopCfg.LoopDetector = nil
		loopCfg.DisableLoopDetection = true
		return
	}
	threshold := loopdetect.DefaultThreshold
	if cfg.LoopDetectionThreshold > 0 {
		threshold = cfg.LoopDetectionThreshold
	}
	// LoopDetectionInteractive doesn't change the Detector itself: the
	// detector always suppresses past threshold. It governs whether the UI
	// layer calls KeepEnabled (let the model retry once) or
	// DisableForSession (stop suppressing for the rest of the session)
	// after surfacing the suppression to the user, versus treating it as
	// terminal. That decision happens above the loop, where the UI has a
	// session and a user to ask.
	loopCfg.LoopDetector = loopdetect.New(threshold)
}

// PTYManagerConfig converts PTYConfig into the pty package's Config.
func PTYManagerConfig(cfg PTYConfig) pty.Config {
	return pty.Config{
		ScrollbackLines:        cfg.ScrollbackLines,
		MaxScrollbackBytes:     cfg.MaxScrollbackBytes,
		LargeOutputThresholdKB: cfg.LargeOutputThresholdKB,
		PreferredShell:         cfg.PreferredShell,
	}
}
