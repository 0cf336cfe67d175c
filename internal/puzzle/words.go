package puzzle

// answers is the fixed pool puzzle instances draw from. Indexes into this
// slice are persisted in serialized board state, so entries must only
// ever be appended, never reordered or removed.
var answers = []string{
	"about", "above", "abuse", "actor", "acute", "admit", "adopt", "adult",
	"after", "again", "agent", "agree", "ahead", "alarm", "album", "alert",
	"alike", "alive", "allow", "alone", "along", "alter", "among", "anger",
	"angle", "angry", "apart", "apple", "apply", "arena", "argue", "arise",
	"armor", "array", "aside", "asset", "audio", "audit", "avoid", "awake",
	"award", "aware", "badly", "baker", "bases", "basic", "basis", "beach",
	"began", "begin", "begun", "being", "below", "bench", "billy", "birth",
	"black", "blame", "blind", "block", "blood", "board", "boost", "booth",
	"bound", "brain", "brand", "bread", "break", "breed", "brief", "bring",
	"broad", "broke", "brown", "build", "built", "buyer", "cable", "calif",
	"carry", "catch", "cause", "chain", "chair", "chart", "chase", "cheap",
	"check", "chest", "chief", "child", "china", "chose", "civil", "claim",
	"class", "clean", "clear", "click", "clock", "close", "coach", "coast",
	"could", "count", "court", "cover", "craft", "crane", "crash", "cream",
	"crime", "cross", "crowd", "crown", "curve", "cycle", "daily", "dance",
	"dated", "dealt", "death", "debut", "delay", "depth", "doing", "doubt",
	"dozen", "draft", "drama", "drawn", "dream", "dress", "drill", "drink",
	"drive", "drove", "dying", "eager", "early", "earth", "eight", "elite",
	"empty", "enemy", "enjoy", "enter", "entry", "equal", "error", "event",
	"every", "exact", "exist", "extra", "faith", "false", "fault", "fiber",
	"field", "fifth", "fifty", "fight", "final", "first", "fixed", "flash",
	"fleet", "floor", "fluid", "focus", "force", "forth", "forty", "forum",
	"found", "frame", "frank", "fraud", "fresh", "front", "fruit", "fully",
	"funny", "giant", "given", "glass", "globe", "going", "grace", "grade",
	"grand", "grant", "grass", "great", "green", "gross", "group", "grown",
	"guard", "guess", "guest", "guide", "happy", "harry", "heart", "heavy",
	"hence", "horse", "hotel", "house", "human", "ideal", "image", "index",
	"inner", "input", "issue", "japan", "joint", "judge", "known", "label",
	"large", "laser", "later", "laugh", "layer", "learn", "lease", "least",
	"leave", "legal", "level", "light", "limit", "local", "logic", "loose",
	"lower", "lucky", "lunch", "lying", "magic", "major", "maker", "march",
	"match", "maybe", "mayor", "meant", "media", "metal", "might", "minor",
	"minus", "mixed", "model", "money", "month", "moral", "motor", "mount",
	"mouse", "mouth", "movie", "music", "needs", "never", "newly", "night",
	"noise", "north", "noted", "novel", "nurse", "occur", "ocean", "offer",
	"often", "order", "other", "ought", "paint", "panel", "paper", "party",
	"peace", "phase", "phone", "photo", "piece", "pilot", "pitch", "place",
	"plain", "plane", "plant", "plate", "point", "pound", "power", "press",
	"price", "pride", "prime", "print", "prior", "prize", "proof", "proud",
	"prove", "queen", "quick", "quiet", "quite", "radio", "raise", "range",
	"rapid", "ratio", "reach", "ready", "refer", "right", "rival", "river",
	"robin", "roger", "roman", "rough", "round", "route", "royal", "rural",
	"scale", "scene", "scope", "score", "sense", "serve", "seven", "shall",
	"shape", "share", "sharp", "sheet", "shelf", "shell", "shift", "shirt",
	"shock", "shoot", "short", "shown", "sight", "since", "sixth", "sixty",
	"sized", "skill", "slate", "sleep", "slide", "small", "smart", "smile",
	"smith", "smoke", "solid", "solve", "sorry", "sound", "south", "space",
	"spare", "speak", "speed", "spend", "spent", "split", "spoke", "sport",
	"staff", "stage", "stake", "stand", "start", "state", "steam", "steel",
	"stick", "still", "stock", "stone", "stood", "store", "storm", "story",
	"strip", "stuck", "study", "stuff", "style", "sugar", "suite", "super",
	"sweet", "table", "taken", "taste", "taxes", "teach", "teeth", "terry",
	"texas", "thank", "theft", "their", "theme", "there", "these", "thick",
	"thing", "think", "third", "those", "three", "threw", "throw", "tight",
	"times", "tired", "title", "today", "topic", "total", "touch", "tough",
	"tower", "track", "trade", "train", "treat", "trend", "trial", "tried",
	"tries", "truck", "truly", "trust", "truth", "twice", "under", "undue",
	"union", "unity", "until", "upper", "upset", "urban", "usage", "usual",
	"valid", "value", "video", "virus", "visit", "vital", "voice", "waste",
	"watch", "water", "wheel", "where", "which", "while", "white", "whole",
	"whose", "woman", "women", "world", "worry", "worse", "worst", "worth",
	"would", "wound", "write", "wrong", "wrote", "young", "youth",
}

// extraAllowed are valid guess words that never appear as answers.
var extraAllowed = []string{
	"abbey", "abide", "adore", "aging", "aisle", "algae", "alpha", "amber",
	"ample", "ankle", "arrow", "atlas", "attic", "bacon", "badge", "bagel",
	"banjo", "barge", "baton", "beard", "beast", "berry", "bison", "blaze",
	"bliss", "bloat", "bluff", "blunt", "blush", "bonus", "brave", "brick",
	"bride", "brine", "brisk", "broom", "brush", "cabin", "cacao", "camel",
	"candy", "cargo", "caulk", "cedar", "chalk", "champ", "charm", "cheek",
	"cheer", "chess", "chill", "chord", "cider", "cigar", "cinch", "clash",
	"cliff", "climb", "cling", "cloak", "clove", "clown", "coral", "couch",
	"cough", "crawl", "creak", "credo", "creek", "crept", "crisp", "crumb",
	"crust", "cubic", "cumin", "curly", "curry", "daisy", "decal", "decay",
	"decor", "deity", "delta", "denim", "diner", "dirge", "ditch", "dodge",
	"donor", "dough", "dwarf", "dwell", "eagle", "easel", "ebony", "edict",
	"elbow", "elder", "elude", "ember", "epoch", "epoxy", "essay", "ethos",
	"evade", "evoke", "fancy", "feast", "ferry", "fetch", "fever", "flair",
	"flake", "flame", "flank", "fling", "flint", "float", "flock", "flour",
	"foamy", "forge", "freak", "frost", "froth", "gauge", "gecko", "glide",
	"gloom", "glove", "gouge", "gravy", "graze", "grime", "grove", "gusto",
	"handy", "hasty", "haunt", "hinge", "hoard", "honey", "hover", "husky",
	"icing", "igloo", "inert", "ivory", "jelly", "jewel", "jolly", "joust",
	"karma", "kayak", "kneel", "knack", "ladle", "lapse", "latch", "lemon",
	"lever", "lilac", "liner", "llama", "lodge", "lofty", "lunar", "lurch",
	"mango", "maple", "marsh", "mercy", "merge", "mirth", "mocha", "moist",
	"moose", "mural", "nerve", "niche", "nudge", "nylon", "oaken", "olive",
	"onset", "opera", "orbit", "otter", "ounce", "oxide", "pasta", "patch",
	"pearl", "pecan", "perch", "pivot", "plaza", "plume", "poise", "polar",
	"preen", "prism", "prowl", "pulse", "quail", "quake", "quart", "quill",
	"raven", "react", "reign", "relic", "ridge", "rinse", "roast", "rogue",
	"rumor", "salsa", "scarf", "scent", "scoop", "scout", "sedan", "shale",
	"shark", "shrub", "skunk", "slump", "snail", "sneak", "spice", "spine",
	"spray", "squad", "stain", "stern", "stoic", "stove", "swirl", "tangy",
	"tempo", "thorn", "tiger", "torch", "trace", "tread", "tulip", "tweed",
	"vague", "vapor", "vault", "venom", "vigor", "wafer", "wager", "waltz",
	"wharf", "wince", "woven", "yacht", "yeast", "zesty",
}

// allowed is the guess dictionary: every answer plus the extras.
var allowed = func() map[string]bool {
	m := make(map[string]bool, len(answers)+len(extraAllowed))
	for _, w := range answers {
		m[w] = true
	}
	for _, w := range extraAllowed {
		m[w] = true
	}
	return m
}()
