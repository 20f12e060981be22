package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore — файловое хранилище токенов (аналог localStorage браузера).
//
// Файл перечитывается при каждом обращении: состояние никогда не
// кэшируется в памяти, чтобы внешний logout (удаление файла) был виден
// сразу. Мьютекс сериализует read-modify-write; в однопроцессном
// приложении этого достаточно.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// fileState — формат файла: те же два фиксированных ключа.
type fileState struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// NewFileStore создаёт хранилище по указанному пути.
// Файл создаётся лениво, при первом сохранении.
func NewFileStore(path string) (*FileStore, error) {
	const op = "tokenstore.NewFileStore"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) AccessToken(_ context.Context) (string, error) {
	const op = "tokenstore.FileStore.AccessToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if state.AccessToken == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	return state.AccessToken, nil
}

func (s *FileStore) RefreshToken(_ context.Context) (string, error) {
	const op = "tokenstore.FileStore.RefreshToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if state.RefreshToken == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	return state.RefreshToken, nil
}

func (s *FileStore) SaveTokens(_ context.Context, access, refresh string) error {
	const op = "tokenstore.FileStore.SaveTokens"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(fileState{AccessToken: access, RefreshToken: refresh}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *FileStore) SaveAccessToken(_ context.Context, access string) error {
	const op = "tokenstore.FileStore.SaveAccessToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	state.AccessToken = access
	if err := s.write(state); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	const op = "tokenstore.FileStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// read загружает состояние; отсутствие файла — пустое состояние, не ошибка.
func (s *FileStore) read() (fileState, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileState{}, nil
		}

		return fileState{}, err
	}

	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil {
		// Битый файл равнозначен отсутствию токенов.
		return fileState{}, nil
	}

	return state, nil
}

// write сохраняет состояние атомарно: временный файл + rename.
// Права 0600 — в файле лежат учётные данные.
func (s *FileStore) write(state fileState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
