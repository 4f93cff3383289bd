package xlog

import (
	"go.uber.org/zap/zapcore"
)

var (
	_ xLogCore = (*fileCore)(nil)
	_ xLogCore = (teeCore)(nil)
)

// fileCore ignores the writer type, it always writes to the rotated file.
type fileCore struct {
	cfg *FileCoreConfig
}

func (fc *fileCore) build(
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	_ LogOutWriterType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (zapcore.Core, error) {
	w, err := newRotateFile(fc.cfg)
	if err != nil {
		return nil, err
	}
	return zapcore.NewCore(
		getEncoderByType(encoder)(newEncoderConfig(lvlEnc, tsEnc)),
		w,
		lvlEnabler,
	), nil
}

type teeCore []xLogCore

func (tc teeCore) build(
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	writer LogOutWriterType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, len(tc))
	for _, c := range tc {
		core, err := c.build(lvlEnabler, encoder, writer, lvlEnc, tsEnc)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
	}
	return zapcore.NewTee(cores...), nil
}
