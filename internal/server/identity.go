package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Leganyst/scrutineering-core/internal/model"
)

// Identity — аутентифицированный вызывающий. Аутентификацию выполняет
// внешний identity-провайдер (обычно обратный прокси перед ядром); ядро
// доверяет заголовкам как есть и само ничего не проверяет.
type Identity struct {
	UserID uuid.UUID
	Role   model.UserRole
}

type ctxKey int

const identityKey ctxKey = iota

const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

// withIdentity кладёт личность вызывающего в контекст запроса.
// Без валидной пары заголовков запрос отклоняется.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(headerUserID))
		if err != nil {
			http.Error(w, "missing or invalid "+headerUserID, http.StatusUnauthorized)
			return
		}
		role := model.UserRole(r.Header.Get(headerRole))
		switch role {
		case model.UserRoleAdmin, model.UserRoleScrutineer, model.UserRoleTeamLeader,
			model.UserRoleTeamMember, model.UserRoleViewer:
		default:
			http.Error(w, "missing or invalid "+headerRole, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// requireRole пропускает перечисленные роли; админ проходит всегда.
func requireRole(roles ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identityFrom(r.Context())
			if id.Role == model.UserRoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
