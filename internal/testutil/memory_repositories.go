package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/contract"
	"ai-chat-quota-be/internal/repository/specification"
)

var ErrDuplicate = contract.ErrDuplicateKey

func (u *memoryUnitOfWork) UserRepository() contract.UserRepository {
	return &memoryUserRepository{uow: u}
}

func (u *memoryUnitOfWork) BundleRepository() contract.BundleRepository {
	return &memoryBundleRepository{uow: u}
}

func (u *memoryUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &memoryChatMessageRepository{uow: u}
}

// read runs fn against the transaction state, or a fresh snapshot outside a transaction.
func (u *memoryUnitOfWork) read(fn func(st *txState)) {
	if u.tx != nil {
		fn(u.tx)
		return
	}
	fn(u.store.snapshot())
}

// write runs fn inside the transaction, or as an auto-committed statement.
func (u *memoryUnitOfWork) write(fn func(st *txState) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()
	st := u.store.snapshot()
	if err := fn(st); err != nil {
		return err
	}
	u.store.apply(st)
	return nil
}

// ---- users ----

type memoryUserRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.uow.store.FailUserCreates; err != nil {
		return err
	}
	return r.uow.write(func(st *txState) error {
		for _, existing := range st.users {
			if existing.Email == user.Email {
				return fmt.Errorf("%w: users.email", ErrDuplicate)
			}
		}
		st.users[user.Id] = cloneUser(user)
		return nil
	})
}

func (r *memoryUserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.uow.write(func(st *txState) error {
		st.users[user.Id] = cloneUser(user)
		return nil
	})
}

func (r *memoryUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var found *entity.User
	r.uow.read(func(st *txState) {
		for _, u := range st.users {
			if matchUser(u, specs) {
				found = cloneUser(u)
				return
			}
		}
	})
	return found, nil
}

func (r *memoryUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	r.uow.read(func(st *txState) {
		for _, u := range st.users {
			if matchUser(u, specs) {
				n++
			}
		}
	})
	return n, nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != s.Email {
				return false
			}
		}
	}
	return true
}

// ---- bundles ----

type memoryBundleRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryBundleRepository) Create(ctx context.Context, bundle *entity.Bundle) error {
	return r.uow.write(func(st *txState) error {
		if _, ok := st.bundles[bundle.Id]; ok {
			return fmt.Errorf("%w: bundles.id", ErrDuplicate)
		}
		st.bundles[bundle.Id] = cloneBundle(bundle)
		return nil
	})
}

func (r *memoryBundleRepository) Update(ctx context.Context, bundle *entity.Bundle) error {
	if err := r.uow.store.FailBundleUpdates; err != nil {
		return err
	}
	return r.uow.write(func(st *txState) error {
		st.bundles[bundle.Id] = cloneBundle(bundle)
		return nil
	})
}

func (r *memoryBundleRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bundle, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memoryBundleRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bundle, error) {
	var out []*entity.Bundle
	r.uow.read(func(st *txState) {
		for _, b := range st.bundles {
			if matchBundle(b, specs) {
				out = append(out, cloneBundle(b))
			}
		}
	})
	sortBundles(out, specs)
	return paginate(out, specs), nil
}

func (r *memoryBundleRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matchBundle(b *entity.Bundle, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if b.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if b.UserId != s.UserID {
				return false
			}
		case specification.ByBundleStatus:
			if b.Status != s.Status {
				return false
			}
		case specification.AutoRenewEnabled:
			if !b.AutoRenew {
				return false
			}
		case specification.RenewalDueBy:
			if b.RenewalDate == nil || b.RenewalDate.After(s.At) {
				return false
			}
		}
	}
	return true
}

func sortBundles(bundles []*entity.Bundle, specs []specification.Specification) {
	// Map iteration order is random. Default to insertion order by creation time.
	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].CreatedAt.Before(bundles[j].CreatedAt)
	})
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			sortByCreatedAt(len(bundles), func(i int) time.Time { return bundles[i].CreatedAt },
				func(i, j int) { bundles[i], bundles[j] = bundles[j], bundles[i] }, o)
		}
	}
}

// ---- chat messages ----

type memoryChatMessageRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryChatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	return r.uow.write(func(st *txState) error {
		st.messages = append(st.messages, cloneMessage(message))
		return nil
	})
}

func (r *memoryChatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	r.uow.read(func(st *txState) {
		for _, m := range st.messages {
			if matchMessage(m, specs) {
				out = append(out, cloneMessage(m))
			}
		}
	})
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			sortByCreatedAt(len(out), func(i int) time.Time { return out[i].CreatedAt },
				func(i, j int) { out[i], out[j] = out[j], out[i] }, o)
		}
	}
	return paginate(out, specs), nil
}

func (r *memoryChatMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if m.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if m.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// ---- helpers ----

// sortByCreatedAt is a stable insertion sort; only created_at ordering is supported.
func sortByCreatedAt(n int, at func(int) time.Time, swap func(i, j int), o specification.OrderBy) {
	if o.Field != "created_at" {
		return
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0; j-- {
			a, b := at(j-1), at(j)
			outOfOrder := a.After(b)
			if o.Desc {
				outOfOrder = a.Before(b)
			}
			if !outOfOrder {
				break
			}
			swap(j-1, j)
		}
	}
}

func paginate[T any](items []T, specs []specification.Specification) []T {
	for _, spec := range specs {
		p, ok := spec.(specification.Pagination)
		if !ok {
			continue
		}
		if p.Offset >= len(items) {
			return nil
		}
		items = items[p.Offset:]
		if p.Limit > 0 && p.Limit < len(items) {
			items = items[:p.Limit]
		}
	}
	return items
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
