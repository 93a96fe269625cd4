package logging

import "testing"

func TestSetLogger(t *testing.T) {
	l := &logger{level: LevelDebug}
	SetLogger(l)
}

func TestSetLevel(t *testing.T) {
	SetLevel(LevelAll)
	func() {
		defer func() {
			err := recover()
			if err != nil {
				t.Errorf("recover returned err: %s", err)
			}
		}()
		SetLevel(1000)
	}()
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]int{
		"debug":   LevelDebug,
		"Info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"none":    LevelNone,
		"off":     LevelNone,
		"all":     LevelAll,
	} {
		got, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned err: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q): %v != %v", name, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel accepted an unknown level")
	}
}

func Test_logger_SetLevel(t *testing.T) {
	l := &logger{level: LevelDebug}
	l.SetLevel(LevelAll)
}

func Test_logger_Levels(t *testing.T) {
	l := &logger{level: LevelDebug}
	l.Debug("logger debug test")
	l.Info("logger info test")
	l.Warn("logger warn test")
	l.Error("logger error test")
}

func Test_Debug(t *testing.T) {
	Debug("log.Debug")
}

func Test_Info(t *testing.T) {
	Info("log.Info")
}

func Test_Warn(t *testing.T) {
	Warn("log.Warn")
}

func Test_Error(t *testing.T) {
	Error("log.Error")
}
