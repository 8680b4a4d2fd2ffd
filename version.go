package anglepath

// Version is the release of the module, printed by "anglepath version".
const Version = "0.3.0"
