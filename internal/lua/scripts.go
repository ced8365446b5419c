package lua

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// Release is the Lua script for releasing a lock held by ARGV[1]
const Release = `
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`

// Renew is the Lua script for extending a lock held by ARGV[1] to ARGV[2] milliseconds
const Renew = `
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('pexpire', KEYS[1], ARGV[2])
end
return 0
`

// Set holds the compiled scripts shared by every lock of one variant.
type Set struct {
	Release *redis.Script
	Renew   *redis.Script
}

type entry struct {
	once sync.Once
	set  *Set
}

var cache sync.Map // variant name -> *entry

// Scripts returns the process-wide script set for variant, compiling it on
// first use. Every caller with the same variant gets the same *Set.
func Scripts(variant string) *Set {
	v, _ := cache.LoadOrStore(variant, &entry{})
	e := v.(*entry)
	e.once.Do(func() {
		e.set = &Set{
			Release: redis.NewScript(Release),
			Renew:   redis.NewScript(Renew),
		}
	})
	return e.set
}
