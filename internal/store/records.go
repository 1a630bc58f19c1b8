package store

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// Project is the persisted project record. Members is the CollaboratorSet.
type Project struct {
	ID        string          `cbor:"1,keyasint" json:"_id"`
	Name      string          `cbor:"2,keyasint" json:"name"`
	Members   []string        `cbor:"3,keyasint" json:"users"`
	FileTree  domain.FileTree `cbor:"4,keyasint" json:"fileTree"`
	CreatedAt time.Time       `cbor:"5,keyasint" json:"createdAt"`
	UpdatedAt time.Time       `cbor:"6,keyasint" json:"updatedAt"`
}

// userRecord is the persisted user. Credentials live in the account service.
type userRecord struct {
	ID        string    `cbor:"1,keyasint"`
	Email     string    `cbor:"2,keyasint"`
	CreatedAt time.Time `cbor:"3,keyasint"`
}

func (u userRecord) toDomain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email}
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Time: cbor.TimeRFC3339Nano,
		Sort: cbor.SortCanonical,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		MaxMapPairs: 1 << 20,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func decode(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
