package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// userID — идентификатор пользователя из claims.
// Бэкенд кладёт в user_id целочисленный первичный ключ, но встречается
// и строковая форма; принимаем обе, наружу отдаём строку.
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*u = userID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*u = userID(n.String())
	return nil
}

// accessClaims — полезная нагрузка токенов бэкенда.
// Обе разновидности (access и refresh) несут одинаковый набор полей.
type accessClaims struct {
	UserID  userID `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
	jwt.RegisteredClaims
}

// decodeClaims разбирает токен без проверки подписи: ключ подписи знает
// только бэкенд, клиенту достаточно полезной нагрузки и срока действия.
// Токен без exp считается битым.
func decodeClaims(raw string) (*accessClaims, error) {
	const op = "session.decodeClaims"

	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%s: missing exp claim", op)
	}

	return claims, nil
}

// expiredAt сравнивает срок действия с часами в секундах от эпохи.
// Токен с exp <= now недействителен.
func (c *accessClaims) expiredAt(now time.Time) bool {
	return c.ExpiresAt.Unix() <= now.Unix()
}
