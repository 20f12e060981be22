package models

// TokenPair — пара токенов, выдаваемая бэкендом при входе/регистрации.
//
// Описание:
//   - AccessToken — короткоживущий JWT, прикладывается к каждому
//     аутентифицированному запросу;
//   - RefreshToken — долгоживущий токен, используется только для
//     выпуска нового access-токена.
type TokenPair struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string
	// RefreshToken — токен для обновления пары.
	RefreshToken string
}
