package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/petbond/backend/internal/db"
	"github.com/petbond/backend/internal/models"
)

const userColumns = `id, name, email, password_hash,
        pet_name, pet_type, pet_breed, pet_age, pet_color, pet_bird_type, pet_image_url,
        created_at, updated_at`

const requestColumns = `id,
        sender_id, sender_name, sender_email, sender_pet_image, sender_pet_breed, sender_pet_age, sender_pet_type,
        receiver_id, receiver_name, receiver_email, receiver_pet_image, receiver_pet_breed, receiver_pet_age, receiver_pet_type,
        status, match_percentage, created_at, responded_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for user
// profiles.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record along with its embedded pet profile.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, user.ID, user.Name, user.Email, user.Password,
		user.Pet.Name, user.Pet.Type, user.Pet.Breed, user.Pet.Age, user.Pet.Color, user.Pet.BirdType, user.Pet.ImageURL,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE email = $1
    `, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by email: %w", err)
	}

	return user, nil
}

// FindByID fetches a user by their identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1
    `, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// ListProfiles returns every user profile. Order is not significant; the
// matchmaking controller samples candidates itself.
func (r *PostgresUserRepository) ListProfiles(ctx context.Context) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update modifies an existing user record, including the pet profile.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET name = $2, email = $3, password_hash = $4,
            pet_name = $5, pet_type = $6, pet_breed = $7, pet_age = $8,
            pet_color = $9, pet_bird_type = $10, pet_image_url = $11,
            updated_at = $12
        WHERE id = $1
    `, user.ID, user.Name, user.Email, user.Password,
		user.Pet.Name, user.Pet.Type, user.Pet.Breed, user.Pet.Age,
		user.Pet.Color, user.Pet.BirdType, user.Pet.ImageURL,
		user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password,
		&user.Pet.Name, &user.Pet.Type, &user.Pet.Breed, &user.Pet.Age,
		&user.Pet.Color, &user.Pet.BirdType, &user.Pet.ImageURL,
		&user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// PostgresFriendRepository provides PostgreSQL-backed persistence for friend
// requests.
type PostgresFriendRepository struct {
	pool db.Pool
}

// NewPostgresFriendRepository constructs a friend repository backed by PostgreSQL.
func NewPostgresFriendRepository(pool db.Pool) *PostgresFriendRepository {
	return &PostgresFriendRepository{pool: pool}
}

// CreateRequest persists a new friend request with both parties' snapshots.
// Duplicate (sender, receiver) pairs are not rejected here; callers run
// RequestExists first, and two writers can both pass that check.
func (r *PostgresFriendRepository) CreateRequest(ctx context.Context, request models.FriendRequest) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friend_requests (`+requestColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
    `, request.ID,
		request.SenderID, request.Sender.Name, request.Sender.Email, request.Sender.PetImage,
		request.Sender.PetBreed, request.Sender.PetAge, request.Sender.PetType,
		request.ReceiverID, request.Receiver.Name, request.Receiver.Email, request.Receiver.PetImage,
		request.Receiver.PetBreed, request.Receiver.PetAge, request.Receiver.PetType,
		request.Status, request.MatchPercentage, request.CreatedAt, request.RespondedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert friend request: %w", err)
	}

	return nil
}

// RequestExists reports whether any request, resolved or not, exists for the
// ordered (sender, receiver) pair.
func (r *PostgresFriendRepository) RequestExists(ctx context.Context, senderID, receiverID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM friend_requests
            WHERE sender_id = $1 AND receiver_id = $2
        )
    `, senderID, receiverID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friend request exists: %w", err)
	}

	return exists, nil
}

// FindRequest loads a single friend request by id.
func (r *PostgresFriendRepository) FindRequest(ctx context.Context, requestID string) (models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+requestColumns+`
        FROM friend_requests
        WHERE id = $1
    `, requestID)

	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendRequest{}, ErrNotFound
		}
		return models.FriendRequest{}, fmt.Errorf("select friend request: %w", err)
	}

	return request, nil
}

// UpdateStatus transitions a request's status and stamps responded_at. The
// prior status is not validated; repeating a transition is harmless.
func (r *PostgresFriendRepository) UpdateStatus(ctx context.Context, requestID, status string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	respondedAt := sql.NullTime{}
	if status != "pending" {
		respondedAt = sql.NullTime{Valid: true, Time: time.Now().UTC()}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE friend_requests
        SET status = $2, responded_at = $3
        WHERE id = $1
    `, requestID, status, respondedAt)
	if err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListPendingForReceiver returns pending requests addressed to the user.
func (r *PostgresFriendRepository) ListPendingForReceiver(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPending(ctx, "receiver_id", userID)
}

// ListPendingFromSender returns pending requests the user has sent.
func (r *PostgresFriendRepository) ListPendingFromSender(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPending(ctx, "sender_id", userID)
}

func (r *PostgresFriendRepository) listPending(ctx context.Context, column, userID string) ([]models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+requestColumns+`
        FROM friend_requests
        WHERE `+column+` = $1 AND status = 'pending'
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query pending friend requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending friend requests: %w", err)
	}

	return requests, nil
}

// ListFriends returns the counterpart snapshot of every accepted request
// involving the user. The snapshots are served exactly as stored at request
// creation time; live profiles are not consulted.
func (r *PostgresFriendRepository) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+requestColumns+`
        FROM friend_requests
        WHERE status = 'accepted' AND (sender_id = $1 OR receiver_id = $1)
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, counterpart(request, userID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friends: %w", err)
	}

	return friends, nil
}

func counterpart(request models.FriendRequest, userID string) models.Friend {
	id, snap := request.SenderID, request.Sender
	if request.SenderID == userID {
		id, snap = request.ReceiverID, request.Receiver
	}
	return models.Friend{
		UserID:   id,
		Name:     snap.Name,
		Email:    snap.Email,
		PetImage: snap.PetImage,
		PetBreed: snap.PetBreed,
		PetAge:   snap.PetAge,
		PetType:  snap.PetType,
	}
}

func scanRequest(row pgx.Row) (models.FriendRequest, error) {
	var request models.FriendRequest
	err := row.Scan(&request.ID,
		&request.SenderID, &request.Sender.Name, &request.Sender.Email, &request.Sender.PetImage,
		&request.Sender.PetBreed, &request.Sender.PetAge, &request.Sender.PetType,
		&request.ReceiverID, &request.Receiver.Name, &request.Receiver.Email, &request.Receiver.PetImage,
		&request.Receiver.PetBreed, &request.Receiver.PetAge, &request.Receiver.PetType,
		&request.Status, &request.MatchPercentage, &request.CreatedAt, &request.RespondedAt)
	return request, err
}

// PostgresPostRepository provides PostgreSQL-backed persistence for feed
// posts.
type PostgresPostRepository struct {
	pool db.Pool
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// Create stores a new post with its counters zeroed.
func (r *PostgresPostRepository) Create(ctx context.Context, post models.Post) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// A nil slice would encode as SQL NULL and trip the NOT NULL constraint
	// on images; content-only posts store an empty array instead.
	images := post.Images
	if images == nil {
		images = []string{}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, author, content, images, likes, comments, created_at)
        VALUES ($1, $2, $3, $4, 0, 0, $5)
    `, post.ID, post.Author, post.Content, images, post.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// List returns the feed in reverse chronological order.
func (r *PostgresPostRepository) List(ctx context.Context) ([]models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, author, content, images, likes, comments, created_at
        FROM posts
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Author, &post.Content, &post.Images, &post.Likes, &post.Comments, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ FriendRepository = (*PostgresFriendRepository)(nil)
var _ PostRepository = (*PostgresPostRepository)(nil)
