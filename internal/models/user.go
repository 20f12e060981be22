package models

// UserProfile — данные пользователя, извлечённые из access-токена.
// Профиль нигде не кэшируется: он каждый раз выводится из текущего
// содержимого хранилища токенов.
type UserProfile struct {
	ID      string
	Name    string
	Email   string
	Balance int64
}
