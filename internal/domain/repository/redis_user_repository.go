package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"auth_api/internal/common"
	"auth_api/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// createUserScript writes the user hash and both unique indexes only when
// neither index key exists. Returns 0 on success, 1 when the email is taken
// and 2 when the username is taken.
//
// KEYS: user hash, email index, username index, creation-order zset
// ARGV: id, username, name, email, password, created_at, score
var createUserScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 1
end
if redis.call('EXISTS', KEYS[3]) == 1 then
  return 2
end
redis.call('HSET', KEYS[1],
  'id', ARGV[1],
  'username', ARGV[2],
  'name', ARGV[3],
  'email', ARGV[4],
  'password', ARGV[5],
  'created_at', ARGV[6])
redis.call('SET', KEYS[2], ARGV[1])
redis.call('SET', KEYS[3], ARGV[1])
redis.call('ZADD', KEYS[4], ARGV[7], ARGV[1])
return 0
`)

type redisUserRepository struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisUserRepository(rdb redis.UniversalClient, keyPrefix string) UserRepository {
	return &redisUserRepository{rdb: rdb, prefix: keyPrefix, now: time.Now}
}

func (r *redisUserRepository) userKey(id string) string { return r.prefix + ":user:" + id }
func (r *redisUserRepository) emailKey(email string) string {
	return r.prefix + ":idx:email:" + email
}
func (r *redisUserRepository) usernameKey(username string) string {
	return r.prefix + ":idx:username:" + username
}
func (r *redisUserRepository) createdKey() string { return r.prefix + ":idx:created" }

func (r *redisUserRepository) Create(ctx context.Context, user *model.User) error {
	id := uuid.NewString()
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	keys := []string{r.userKey(id), r.emailKey(user.Email), r.usernameKey(user.Username), r.createdKey()}
	res, err := createUserScript.Run(ctx, r.rdb, keys,
		id, user.Username, user.Name, user.Email, user.Password,
		createdAt.Format(time.RFC3339Nano), createdAt.UnixMicro(),
	).Int()
	if err != nil {
		return fmt.Errorf("redisUserRepository.Create: %w", err)
	}

	switch res {
	case 0:
		user.ID = id
		user.CreatedAt = createdAt
		return nil
	case 1:
		return common.ErrDuplicateEmail
	case 2:
		return common.ErrDuplicateUsername
	default:
		return fmt.Errorf("redisUserRepository.Create: unexpected script result %d", res)
	}
}

func (r *redisUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findByIndex(ctx, "FindByEmail", r.emailKey(email))
}

func (r *redisUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findByIndex(ctx, "FindByUsername", r.usernameKey(username))
}

func (r *redisUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	fields, err := r.rdb.HGetAll(ctx, r.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisUserRepository.FindByID: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrNotFound
	}
	return decodeUser(fields)
}

func (r *redisUserRepository) List(ctx context.Context) ([]model.User, error) {
	ids, err := r.rdb.ZRange(ctx, r.createdKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisUserRepository.List: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, r.userKey(id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("redisUserRepository.List pipeline: %w", err)
		}
	}

	users := make([]model.User, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		u, err := decodeUser(fields)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *redisUserRepository) findByIndex(ctx context.Context, op, indexKey string) (*model.User, error) {
	id, err := r.rdb.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisUserRepository.%s: %w", op, err)
	}
	user, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func decodeUser(fields map[string]string) (*model.User, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode user %s created_at %s: %w", fields["id"], strconv.Quote(fields["created_at"]), err)
	}
	return &model.User{
		ID:        fields["id"],
		Username:  fields["username"],
		Name:      fields["name"],
		Email:     fields["email"],
		Password:  fields["password"],
		CreatedAt: createdAt,
	}, nil
}
