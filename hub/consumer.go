package hub

// ConsumerId identifies one consumer of value change information, usually
// one query of one prepared system. Ids are issued by the world owning the
// storage and are unique within that world for the lifetime of the process.
type ConsumerId uint32
