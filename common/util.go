package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// GetAsset loads an example program shipped under assets/ next to this file.
// The programs are plain OpenQASM text; the .qasm extension may be omitted.
func GetAsset(name string) (string, error) {
	path, err := GetAssetAbsPath(name)
	if err != nil {
		return "", err
	}
	return ReadFile(path)
}

func GetAssetAbsPath(name string) (string, error) {
	if !strings.HasSuffix(name, ".qasm") {
		name += ".qasm"
	}
	_, cFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to locate the assets directory")
	}
	path := filepath.Join(filepath.Dir(cFilePath), "assets", name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("example program %s is not found/reason:%s", name, err)
	}
	return path, nil
}

func ReadFile(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

func ReadSettingsFile(settingsPath string) (string, error) {
	blob, err := os.ReadFile(settingsPath)
	if err == nil {
		return string(blob), nil
	}
	shown := settingsPath
	if abs, absErr := filepath.Abs(settingsPath); absErr == nil {
		shown = abs
	}
	zap.L().Error(fmt.Sprintf("failed to read settings file:%s/reason:%s", shown, err))
	return "", err
}

// IsDirWritable checks the metrics/log directories before any periodic task
// starts writing to them.
func IsDirWritable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dirPath)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dirPath)
	}
	f, err := os.CreateTemp(dirPath, "qubera-write-check-*.tmp")
	if err != nil {
		return fmt.Errorf("write permission denied for directory: %s", dirPath)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
