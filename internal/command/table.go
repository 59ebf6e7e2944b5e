package command

// Each delta lists the commands introduced, or redefined, by that server
// version. Profiles fold deltas in order, later entries overriding earlier.
type versionDelta struct {
	version string
	specs   []*Spec
}

var deltas = []versionDelta{
	{version: "2.6", specs: []*Spec{
		define("PING", 1, 2, NoKeys, Text),
		define("ECHO", 2, 2, NoKeys, Text),
		define("SELECT", 2, 2, NoKeys, Status),
		define("AUTH", 2, 2, NoKeys, Status),
		define("QUIT", 1, 1, NoKeys, Status),

		define("GET", 2, 2, FirstKey, Bulk),
		define("SET", 3, -1, FirstKey, Raw),
		define("SETNX", 3, 3, FirstKey, Bool),
		define("SETEX", 4, 4, FirstKey, Status),
		define("PSETEX", 4, 4, FirstKey, Status),
		define("GETSET", 3, 3, FirstKey, Bulk),
		define("MGET", 2, -1, AllKeys, Raw),
		define("MSET", 3, -1, InterleavedKeys, Status),
		define("MSETNX", 3, -1, InterleavedKeys, Bool),
		define("APPEND", 3, 3, FirstKey, Integer),
		define("STRLEN", 2, 2, FirstKey, Integer),
		define("INCR", 2, 2, FirstKey, Integer),
		define("INCRBY", 3, 3, FirstKey, Integer),
		define("INCRBYFLOAT", 3, 3, FirstKey, Float),
		define("DECR", 2, 2, FirstKey, Integer),
		define("DECRBY", 3, 3, FirstKey, Integer),
		define("GETRANGE", 4, 4, FirstKey, Bulk, "SUBSTR"),
		define("SETRANGE", 4, 4, FirstKey, Integer),
		define("GETBIT", 3, 3, FirstKey, Integer),
		define("SETBIT", 4, 4, FirstKey, Integer),
		define("BITCOUNT", 2, 4, FirstKey, Integer),
		define("BITOP", 4, -1, AllButFirstKeys, Integer),

		define("DEL", 2, -1, AllKeys, Integer),
		define("EXISTS", 2, 2, FirstKey, Bool),
		define("TYPE", 2, 2, FirstKey, Status),
		define("KEYS", 2, 2, NoKeys, Strings),
		define("RANDOMKEY", 1, 1, NoKeys, Bulk),
		define("RENAME", 3, 3, AllKeys, Status),
		define("RENAMENX", 3, 3, AllKeys, Bool),
		define("EXPIRE", 3, 3, FirstKey, Bool),
		define("PEXPIRE", 3, 3, FirstKey, Bool),
		define("EXPIREAT", 3, 3, FirstKey, Bool),
		define("PEXPIREAT", 3, 3, FirstKey, Bool),
		define("TTL", 2, 2, FirstKey, Integer),
		define("PTTL", 2, 2, FirstKey, Integer),
		define("PERSIST", 2, 2, FirstKey, Bool),
		define("DUMP", 2, 2, FirstKey, Bulk),
		define("RESTORE", 4, -1, FirstKey, Status),
		define("OBJECT", 3, 3, AllButFirstKeys, Raw),
		define("SORT", 2, -1, FirstKey, Raw),

		define("LPUSH", 3, -1, FirstKey, Integer),
		define("RPUSH", 3, -1, FirstKey, Integer),
		define("LPUSHX", 3, 3, FirstKey, Integer),
		define("RPUSHX", 3, 3, FirstKey, Integer),
		define("LPOP", 2, 2, FirstKey, Bulk),
		define("RPOP", 2, 2, FirstKey, Bulk),
		define("LLEN", 2, 2, FirstKey, Integer),
		define("LRANGE", 4, 4, FirstKey, Strings),
		define("LINDEX", 3, 3, FirstKey, Bulk),
		define("LSET", 4, 4, FirstKey, Status),
		define("LREM", 4, 4, FirstKey, Integer),
		define("LTRIM", 4, 4, FirstKey, Status),
		define("LINSERT", 5, 5, FirstKey, Integer),
		define("BLPOP", 3, -1, AllButLastKeys, Strings),
		define("BRPOP", 3, -1, AllButLastKeys, Strings),
		define("RPOPLPUSH", 3, 3, AllKeys, Bulk),
		define("BRPOPLPUSH", 4, 4, AllButLastKeys, Bulk),

		define("SADD", 3, -1, FirstKey, Integer),
		define("SREM", 3, -1, FirstKey, Integer),
		define("SMEMBERS", 2, 2, FirstKey, Strings),
		define("SISMEMBER", 3, 3, FirstKey, Bool),
		define("SCARD", 2, 2, FirstKey, Integer),
		define("SPOP", 2, 2, FirstKey, Bulk),
		define("SRANDMEMBER", 2, 3, FirstKey, Raw),
		define("SMOVE", 4, 4, AllButLastKeys, Bool),
		define("SINTER", 2, -1, AllKeys, Strings),
		define("SUNION", 2, -1, AllKeys, Strings),
		define("SDIFF", 2, -1, AllKeys, Strings),
		define("SINTERSTORE", 3, -1, AllKeys, Integer),
		define("SUNIONSTORE", 3, -1, AllKeys, Integer),
		define("SDIFFSTORE", 3, -1, AllKeys, Integer),

		define("ZADD", 4, -1, FirstKey, Integer),
		define("ZREM", 3, -1, FirstKey, Integer),
		define("ZSCORE", 3, 3, FirstKey, Float),
		define("ZINCRBY", 4, 4, FirstKey, Float),
		define("ZCARD", 2, 2, FirstKey, Integer),
		define("ZCOUNT", 4, 4, FirstKey, Integer),
		define("ZRANK", 3, 3, FirstKey, Integer),
		define("ZREVRANK", 3, 3, FirstKey, Integer),
		define("ZRANGE", 4, 5, FirstKey, Raw),
		define("ZREVRANGE", 4, 5, FirstKey, Raw),
		define("ZRANGEBYSCORE", 4, -1, FirstKey, Raw),
		define("ZREVRANGEBYSCORE", 4, -1, FirstKey, Raw),
		define("ZREMRANGEBYRANK", 4, 4, FirstKey, Integer),
		define("ZREMRANGEBYSCORE", 4, 4, FirstKey, Integer),
		define("ZUNIONSTORE", 4, -1, DestinationNumKeys, Integer),
		define("ZINTERSTORE", 4, -1, DestinationNumKeys, Integer),

		define("HSET", 4, 4, FirstKey, Bool),
		define("HSETNX", 4, 4, FirstKey, Bool),
		define("HGET", 3, 3, FirstKey, Bulk),
		define("HMSET", 4, -1, FirstKey, Status),
		define("HMGET", 3, -1, FirstKey, Raw),
		define("HGETALL", 2, 2, FirstKey, StringMap),
		define("HDEL", 3, -1, FirstKey, Integer),
		define("HEXISTS", 3, 3, FirstKey, Bool),
		define("HLEN", 2, 2, FirstKey, Integer),
		define("HKEYS", 2, 2, FirstKey, Strings),
		define("HVALS", 2, 2, FirstKey, Strings),
		define("HINCRBY", 4, 4, FirstKey, Integer),
		define("HINCRBYFLOAT", 4, 4, FirstKey, Float),

		define("MULTI", 1, 1, NoKeys, Status),
		define("EXEC", 1, 1, NoKeys, Raw),
		define("DISCARD", 1, 1, NoKeys, Status),
		define("WATCH", 2, -1, AllKeys, Status),
		define("UNWATCH", 1, 1, NoKeys, Status),

		define("EVAL", 3, -1, ScriptKeys, Raw),
		define("EVALSHA", 3, -1, ScriptKeys, Raw),
		define("SCRIPT", 2, -1, NoKeys, Raw),

		define("PUBLISH", 3, 3, NoKeys, Integer),
		define("SUBSCRIBE", 2, -1, NoKeys, Raw),
		define("UNSUBSCRIBE", 1, -1, NoKeys, Raw),
		define("PSUBSCRIBE", 2, -1, NoKeys, Raw),
		define("PUNSUBSCRIBE", 1, -1, NoKeys, Raw),

		define("INFO", 1, 2, NoKeys, Text),
		define("DBSIZE", 1, 1, NoKeys, Integer),
		define("FLUSHDB", 1, 2, NoKeys, Status),
		define("FLUSHALL", 1, 2, NoKeys, Status),
		define("SAVE", 1, 1, NoKeys, Status),
		define("BGSAVE", 1, 2, NoKeys, Status),
		define("BGREWRITEAOF", 1, 1, NoKeys, Status),
		define("LASTSAVE", 1, 1, NoKeys, Integer),
		define("CONFIG", 2, -1, NoKeys, Raw),
		define("SHUTDOWN", 1, 2, NoKeys, Status),
		define("MONITOR", 1, 1, NoKeys, Status),
		define("SLAVEOF", 3, 3, NoKeys, Status),
		define("SLOWLOG", 2, 3, NoKeys, Raw),
		define("TIME", 1, 1, NoKeys, Strings),
		define("CLIENT", 2, -1, NoKeys, Raw),
	}},
	{version: "2.8", specs: []*Spec{
		define("SCAN", 2, -1, NoKeys, Raw),
		define("SSCAN", 3, -1, FirstKey, Raw),
		define("HSCAN", 3, -1, FirstKey, Raw),
		define("ZSCAN", 3, -1, FirstKey, Raw),
		define("BITPOS", 3, 5, FirstKey, Integer),
		define("PFADD", 2, -1, FirstKey, Bool),
		define("PFCOUNT", 2, -1, AllKeys, Integer),
		define("PFMERGE", 2, -1, AllKeys, Status),
		define("ZLEXCOUNT", 4, 4, FirstKey, Integer),
		define("ZRANGEBYLEX", 4, -1, FirstKey, Strings),
		define("ZREMRANGEBYLEX", 4, 4, FirstKey, Integer),
		define("ROLE", 1, 1, NoKeys, Raw),
		define("COMMAND", 1, -1, NoKeys, Raw),
		define("PUBSUB", 2, -1, NoKeys, Raw),
	}},
	{version: "3.2", specs: []*Spec{
		define("EXISTS", 2, -1, AllKeys, Integer),
		define("CLUSTER", 2, -1, NoKeys, Raw),
		define("ASKING", 1, 1, NoKeys, Status),
		define("READONLY", 1, 1, NoKeys, Status),
		define("READWRITE", 1, 1, NoKeys, Status),
		define("GEOADD", 5, -1, FirstKey, Integer),
		define("GEODIST", 4, 5, FirstKey, Float),
		define("GEOHASH", 2, -1, FirstKey, Strings),
		define("GEOPOS", 2, -1, FirstKey, Raw),
		define("GEORADIUS", 6, -1, FirstKey, Raw),
		define("GEORADIUSBYMEMBER", 5, -1, FirstKey, Raw),
		define("HSTRLEN", 3, 3, FirstKey, Integer),
		define("BITFIELD", 2, -1, FirstKey, Raw),
		define("TOUCH", 2, -1, AllKeys, Integer),
	}},
	{version: "5.0", specs: []*Spec{
		define("UNLINK", 2, -1, AllKeys, Integer),
		define("SWAPDB", 3, 3, NoKeys, Status),
		define("HSET", 4, -1, FirstKey, Integer),
		define("XADD", 5, -1, FirstKey, Bulk),
		define("XLEN", 2, 2, FirstKey, Integer),
		define("XDEL", 3, -1, FirstKey, Integer),
		define("XRANGE", 4, 6, FirstKey, Raw),
		define("XREVRANGE", 4, 6, FirstKey, Raw),
		define("XREAD", 4, -1, StreamKeys, Raw),
		define("XTRIM", 4, -1, FirstKey, Integer),
		define("ZPOPMIN", 2, 3, FirstKey, Raw),
		define("ZPOPMAX", 2, 3, FirstKey, Raw),
		define("BZPOPMIN", 3, -1, AllButLastKeys, Raw),
		define("BZPOPMAX", 3, -1, AllButLastKeys, Raw),
	}},
	{version: "6.2", specs: []*Spec{
		define("HELLO", 1, -1, NoKeys, Raw),
		define("GETDEL", 2, 2, FirstKey, Bulk),
		define("GETEX", 2, -1, FirstKey, Bulk),
		define("COPY", 3, -1, AllKeys, Bool),
		define("LMOVE", 5, 5, AllKeys, Bulk),
		define("BLMOVE", 6, 6, AllButLastKeys, Bulk),
		define("LPOP", 2, 3, FirstKey, Raw),
		define("RPOP", 2, 3, FirstKey, Raw),
		define("ZRANGE", 4, -1, FirstKey, Raw),
		define("ZRANGESTORE", 5, -1, AllButLastKeys, Integer),
		define("GEOSEARCH", 7, -1, FirstKey, Raw),
		define("GEOSEARCHSTORE", 8, -1, AllButFirstKeys, Integer),
		define("SMISMEMBER", 3, -1, FirstKey, Raw),
	}},
	{version: "7.0", specs: []*Spec{
		define("SINTERCARD", 3, -1, NumKeysFirst, Integer),
		define("ZINTERCARD", 3, -1, NumKeysFirst, Integer),
		define("LMPOP", 4, -1, NumKeysFirst, Raw),
		define("EVAL_RO", 3, -1, ScriptKeys, Raw),
		define("EVALSHA_RO", 3, -1, ScriptKeys, Raw),
		define("BITFIELD_RO", 2, -1, FirstKey, Raw),
		define("EXPIRETIME", 2, 2, FirstKey, Integer),
		define("PEXPIRETIME", 2, 2, FirstKey, Integer),
		define("EXPIRE", 3, 4, FirstKey, Bool),
		define("PEXPIRE", 3, 4, FirstKey, Bool),
		define("FUNCTION", 2, -1, NoKeys, Raw),
		define("FCALL", 3, -1, ScriptKeys, Raw),
		define("FCALL_RO", 3, -1, ScriptKeys, Raw),
	}},
}
